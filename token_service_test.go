package pitwall_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pitwall/pitwall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(expirationHours int) *pitwall.TokenServiceImpl {
	return pitwall.NewTokenService(
		[]byte("test-signing-key"),
		expirationHours,
		"test-issuer",
		jwt.ClaimStrings{"test:audience"},
		nil,
	)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	ts := newTokenService(1)

	user := &pitwall.User{
		ID:    uuid.New(),
		Email: "driver@example.com",
	}

	token, err := ts.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject())
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, "driver@example.com", claims.UserEmail())
	assert.NotEmpty(t, claims.TokenID())
	assert.WithinDuration(t, claims.IssuedAt().Add(time.Hour), claims.Expires(), time.Second)
}

func TestTokenServiceDefaultsExpirationToOneHour(t *testing.T) {
	ts := newTokenService(0)

	token, err := ts.Generate(&pitwall.User{ID: uuid.New(), Email: "a@example.com"})
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.WithinDuration(t, claims.IssuedAt().Add(time.Hour), claims.Expires(), time.Second)
}

func TestTokenServiceRejectsNilUser(t *testing.T) {
	ts := newTokenService(1)

	_, err := ts.Generate(nil)
	require.Error(t, err)
}

func TestTokenServiceValidateRejectsBadTokens(t *testing.T) {
	ts := newTokenService(1)

	t.Run("garbage input", func(t *testing.T) {
		_, err := ts.Validate("not.a.token")
		require.Error(t, err)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := pitwall.NewTokenService(
			[]byte("a-different-key"),
			1,
			"test-issuer",
			jwt.ClaimStrings{"test:audience"},
			nil,
		)

		token, err := other.Generate(&pitwall.User{ID: uuid.New(), Email: "a@example.com"})
		require.NoError(t, err)

		_, err = ts.Validate(token)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := pitwall.NewTokenService(
			[]byte("test-signing-key"),
			1,
			"someone-else",
			jwt.ClaimStrings{"test:audience"},
			nil,
		)

		token, err := other.Generate(&pitwall.User{ID: uuid.New(), Email: "a@example.com"})
		require.NoError(t, err)

		_, err = ts.Validate(token)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Now()
		claims := &pitwall.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   uuid.NewString(),
				Audience:  jwt.ClaimStrings{"test:audience"},
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
				ID:        uuid.NewString(),
			},
		}

		token, err := ts.SignClaims(claims)
		require.NoError(t, err)

		_, err = ts.Validate(token)
		require.Error(t, err)
		assert.Equal(t, pitwall.ErrTokenExpired.TextCode, textCodeOf(t, err))
	})
}

func TestTokenServiceSignClaimsRejectsNil(t *testing.T) {
	ts := newTokenService(1)

	_, err := ts.SignClaims(nil)
	require.Error(t, err)
}
