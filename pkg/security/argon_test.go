package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the tests fast
func testHasher() *ArgonHash {
	return &ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestArgonRoundTrip(t *testing.T) {
	a := testHasher()

	hash, err := a.GenerateFromPassword("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)

	ok, err := a.VerifyPasswd("pw1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("pw2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonSaltsDiffer(t *testing.T) {
	a := testHasher()

	h1, err := a.GenerateFromPassword("same")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonVerifyUsesStoredParams(t *testing.T) {
	hash, err := testHasher().GenerateFromPassword("secret")
	require.NoError(t, err)

	ok, err := New().VerifyPasswd("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonVerifyMalformed(t *testing.T) {
	a := testHasher()

	for _, h := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	} {
		ok, err := a.VerifyPasswd("pw", h)
		assert.Error(t, err, h)
		assert.False(t, ok, h)
	}
}
