package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "changeme", hash)
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	require.NoError(t, err)

	valid, err := CheckPassword("changeme", hash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	require.NoError(t, err)

	valid, err := CheckPassword("wrongpassword", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	valid, err := CheckPassword("changeme", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, valid)
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("changeme")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	strong, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost+1)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(strong)))
	assert.True(t, NeedsRehash("garbage"))
}
