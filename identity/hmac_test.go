package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	key := []byte("team-secret")
	payloads := []string{"", "Alice_1000_u1", "Bella_2000_u1", "ünïcødé_5_x"}
	for _, p := range payloads {
		tag := Sign(p, key)
		assert.True(t, Verify(tag, p, key), "payload %q", p)
		assert.Equal(t, tag, Sign(p, key), "tag must be deterministic")
	}
}

func TestVerify_SingleBitMutations(t *testing.T) {
	key := []byte("team-secret")
	payload := "Alice_1000_u1"
	tag := Sign(payload, key)

	for i := 0; i < len(payload); i++ {
		b := []byte(payload)
		b[i] ^= 0x01
		assert.False(t, Verify(tag, string(b), key), "payload bit flip at %d", i)
	}

	for i := 0; i < len(key); i++ {
		k := append([]byte(nil), key...)
		k[i] ^= 0x01
		assert.False(t, Verify(tag, payload, k), "key bit flip at %d", i)
	}

	for i := 0; i < len(tag); i++ {
		for bit := 0; bit < 8; bit++ {
			raw := []byte(tag)
			raw[i] ^= 1 << bit
			assert.False(t, Verify(string(raw), payload, key), "tag bit %d flip at %d", bit, i)
		}
	}
}

func TestVerify_RejectsUppercaseTag(t *testing.T) {
	key := []byte("team-secret")
	payload := "Alice_1000_u1"
	tag := Sign(payload, key)
	assert.Equal(t, strings.ToLower(tag), tag)
	if upper := strings.ToUpper(tag); upper != tag {
		assert.False(t, Verify(upper, payload, key))
	}
}

func TestVerify_Malformed(t *testing.T) {
	key := []byte("k")
	assert.False(t, Verify("not-hex", "p", key))
	assert.False(t, Verify("", "p", key))
	assert.False(t, Verify(Sign("p", key)[:10], "p", key))
	assert.False(t, Verify(Sign("p", nil), "p", nil))
	assert.Empty(t, Sign("p", nil), "no tag without a key")
	assert.Empty(t, Sign("p", []byte{}))
}

func TestNewSigner(t *testing.T) {
	_, err := NewSigner(nil)
	require.ErrorIs(t, err, ErrEmptyKey)

	key := []byte("secret")
	s, err := NewSigner(key)
	require.NoError(t, err)
	tag := s.Sign("Alice_1_u1")

	// The signer owns a copy of the key.
	key[0] = 'X'
	assert.True(t, s.Verify(tag, "Alice_1_u1"))
	assert.False(t, s.Verify(tag, "Alice_2_u1"))
}
