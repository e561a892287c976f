// Package identity produces and checks keyed integrity tags over identity
// claims exchanged between teammates. It provides authenticity only; claims
// travel in the clear.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmptyKey is returned when a signer is built without a team secret.
var ErrEmptyKey = errors.New("team secret is empty")

// Signer holds the shared team secret.
type Signer struct {
	key []byte
}

// NewSigner refuses to operate with an empty secret: every agent running
// with one would accept forged claims from any other such agent.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Signer{key: k}, nil
}

// Sign returns the hex HMAC-SHA256 tag of payload.
func (s *Signer) Sign(payload string) string {
	return Sign(payload, s.key)
}

// Verify reports whether tag was produced by Sign for payload.
func (s *Signer) Verify(tag, payload string) bool {
	return Verify(tag, payload, s.key)
}

// Sign is deterministic: the same payload and key always yield the same
// lowercase hex tag. An empty key signs nothing and yields "".
func Sign(payload string, key []byte) string {
	if len(key) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the tag and compares the hex text in constant time, so
// only the canonical lowercase encoding matches. An empty key never verifies
// anything.
func Verify(tag, payload string, key []byte) bool {
	if len(key) == 0 {
		return false
	}
	return hmac.Equal([]byte(tag), []byte(Sign(payload, key)))
}
