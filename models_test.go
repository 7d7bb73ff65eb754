package pitwall_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pitwall/pitwall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := &pitwall.User{
		ID:           uuid.New(),
		Email:        "driver@example.com",
		PasswordHash: "$2a$14$secret",
	}

	payload, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "secret")
	assert.NotContains(t, string(payload), "password_hash")
}

func TestEmailConfirmationConsumed(t *testing.T) {
	var nilRecord *pitwall.EmailConfirmation
	assert.False(t, nilRecord.Consumed())

	record := &pitwall.EmailConfirmation{ID: uuid.New()}
	assert.False(t, record.Consumed())

	now := time.Now()
	record.ConsumedAt = &now
	assert.True(t, record.Consumed())
}

func TestEmailConfirmationJSONHidesCode(t *testing.T) {
	record := &pitwall.EmailConfirmation{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Code:   "super-secret-code",
	}

	payload, err := json.Marshal(record)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "super-secret-code")
}
