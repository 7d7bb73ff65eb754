package pitwall_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pitwall/pitwall"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaimsAccessors(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	claims := &pitwall.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ID:        "jti-456",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:   "user-123",
		Email: "driver@example.com",
	}

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "driver@example.com", claims.UserEmail())
	assert.Equal(t, "jti-456", claims.TokenID())
	assert.Equal(t, now, claims.IssuedAt())
	assert.Equal(t, now.Add(time.Hour), claims.Expires())
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &pitwall.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-only"},
	}

	assert.Equal(t, "subject-only", claims.UserID())
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &pitwall.JWTClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}
