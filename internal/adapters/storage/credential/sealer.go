package credential

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks a value written by Sealer.Seal.
const sealedPrefix = "sb1:"

const nonceSize = 24

// ErrOpen is returned when a sealed value fails authentication.
var ErrOpen = errors.New("sealed credential failed authentication")

// Sealer encrypts tokens at rest with NaCl secretbox.
type Sealer struct {
	key  [32]byte
	rand io.Reader
}

// NewSealer builds a Sealer from a 32-byte key.
// PRE: len(key) == 32
// POST: returns a Sealer, or an error for a wrong-length key
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("secretbox key must be 32 bytes, got %d", len(key))
	}
	s := &Sealer{rand: rand.Reader}
	copy(s.key[:], key)
	return s, nil
}

// Seal returns "sb1:" + base64(nonce || box).
func (s *Sealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
// PRE: value was produced by Seal with the same key
// POST: returns the plaintext token, or ErrOpen
func (s *Sealer) Open(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}

// IsSealed reports whether value carries the sealed prefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
