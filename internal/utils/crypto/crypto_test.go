package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.NoError(t, CheckPassword("Password123", hash))
	assert.Error(t, CheckPassword("WrongPassword", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("Password123", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("Password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "same input must not produce the same hash")
}

func TestGenerateResetToken(t *testing.T) {
	plain, hash, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, 64, "32 random bytes hex encoded")
	assert.Len(t, hash, 64, "sha-256 hex digest")
	assert.NotEqual(t, plain, hash)
	assert.Equal(t, hash, HashResetToken(plain))

	plain2, hash2, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, plain2)
	assert.NotEqual(t, hash, hash2)
}
