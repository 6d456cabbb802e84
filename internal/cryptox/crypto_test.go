package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("secret"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "unexpected hash prefix: %s", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	require.NoError(t, ComparePassword(hash, []byte("secret")))
	require.ErrorIs(t, ComparePassword(hash, []byte("wrong")), common.ErrorUnauthorized)
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword([]byte("secret"))
	require.NoError(t, err)
	h2, err := HashPassword([]byte("secret"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword(nil)
	require.ErrorIs(t, err, common.ErrorEmptyPassword)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	err := ComparePassword("not-a-hash", []byte("secret"))
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("alice", []byte("secret"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("alice", []byte("secret")))
	assert.NotEqual(t, a, Fingerprint("alice", []byte("secreT")))
	// separator keeps "ab"+"c" apart from "a"+"bc"
	assert.NotEqual(t, Fingerprint("ab", []byte("c")), Fingerprint("a", []byte("bc")))
}
