// Package obfuscate scrambles save payloads at rest.
//
// The key ships inside the program, so anyone holding the binary can
// recover it. This keeps casual readers and text editors out of save files;
// it does not protect them from a determined user.
package obfuscate

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// DefaultKey is the key used when none is configured.
const DefaultKey = "6c1996cf353b4593cb393055e1c0c27c"

var ErrMalformed = errors.New("obfuscate: payload malformed or altered")

// Obfuscator transforms payloads on the way to and from storage.
type Obfuscator interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// FixedKey seals payloads with XChaCha20-Poly1305 under a key derived from a
// constant string. Output is nonce followed by ciphertext.
type FixedKey struct {
	key [chacha20poly1305.KeySize]byte
}

// NewFixedKey derives the sealing key from key. An empty key selects
// DefaultKey.
func NewFixedKey(key string) *FixedKey {
	if key == "" {
		key = DefaultKey
	}
	return &FixedKey{key: sha256.Sum256([]byte(key))}
}

func (f *FixedKey) Seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key[:])
	if err != nil {
		return nil, fmt.Errorf("obfuscate: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("obfuscate: nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (f *FixedKey) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key[:])
	if err != nil {
		return nil, fmt.Errorf("obfuscate: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrMalformed
	}
	return plain, nil
}

// None passes payloads through unchanged.
type None struct{}

func (None) Seal(plain []byte) ([]byte, error) { return plain, nil }

func (None) Open(sealed []byte) ([]byte, error) { return sealed, nil }
