package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Generate("user-1", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).Generate("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tokens := NewTokens("test-secret", -time.Hour)
	// NewTokens clamps non-positive TTLs, so build an expired signer directly.
	tokens.ttl = -time.Hour

	signed, err := tokens.Generate("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokens("test-secret", time.Hour).Validate("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	assert.NoError(t, VerifyPassword(hash, "hunter22"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}
