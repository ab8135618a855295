package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/studio_backend/config"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testParams)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.NoError(t, Verify(hash, "correct horse battery staple"))
	assert.ErrorIs(t, Verify(hash, "correct horse battery stapl"), ErrMismatch)
	assert.ErrorIs(t, Verify(hash, ""), ErrMismatch)

	again, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts differ")
}

func TestVerify_InvalidHash(t *testing.T) {
	tt := []struct {
		desc string
		hash string
		want error
	}{
		{desc: "empty", hash: "", want: ErrInvalidHash},
		{desc: "bcrypt", hash: "$2a$10$abcdefghijklmnopqrstuv", want: ErrInvalidHash},
		{desc: "wrong algorithm", hash: "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidHash},
		{desc: "wrong version", hash: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", want: ErrIncompatibleVersion},
		{desc: "bad params", hash: "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA", want: ErrInvalidHash},
		{desc: "bad salt", hash: "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", want: ErrInvalidHash},
	}

	for _, ts := range tt {
		assert.ErrorIs(t, Verify(ts.hash, "pw"), ts.want, ts.desc)
	}
}

func TestNeedsRehash(t *testing.T) {
	h := NewHasher(testParams)
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(hash))

	stronger := testParams
	stronger.Iterations = 2
	assert.True(t, NewHasher(stronger).NeedsRehash(hash))
	assert.True(t, h.NeedsRehash("garbage"))
}

func TestFromCentralConfig(t *testing.T) {
	assert.Equal(t, DefaultParams(), FromCentralConfig(config.PasswordConfig{}))

	p := FromCentralConfig(config.PasswordConfig{LowMemoryMode: true})
	assert.Equal(t, uint32(32*1024), p.Memory)
	assert.Equal(t, uint32(4), p.Iterations)

	p = FromCentralConfig(config.PasswordConfig{MemoryKiB: 19 * 1024, Iterations: 2})
	assert.Equal(t, uint32(19*1024), p.Memory)
	assert.Equal(t, uint32(2), p.Iterations)
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{1, 12, 16, 33} {
		pw, err := Generate(n)
		require.NoError(t, err)
		assert.Len(t, pw, n)
	}

	pw, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, pw, 16)
}
