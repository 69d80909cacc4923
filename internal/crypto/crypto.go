package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize    // 32-byte symmetric key
	NonceSize = chacha20poly1305.NonceSizeX // XChaCha20 nonce size
	TagSize   = chacha20poly1305.Overhead   // Poly1305 authentication tag size
)

var (
	ErrInvalidKey        = errors.New("invalid secret key")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// SecretKey is a 32-byte symmetric key held in locked memory.
// Its contents are never formatted by fmt.
type SecretKey struct {
	buf *memguard.LockedBuffer
}

// GenerateKey creates a new random key
func GenerateKey() (*SecretKey, error) {
	buf := memguard.NewBufferRandom(KeySize)
	if buf.Size() != KeySize {
		buf.Destroy()
		return nil, fmt.Errorf("failed to allocate key: %w", ErrInvalidKey)
	}
	return &SecretKey{buf: buf}, nil
}

// NewSecretKey builds a key from raw bytes. The source slice is wiped.
func NewSecretKey(raw []byte) (*SecretKey, error) {
	if len(raw) != KeySize {
		ClearBytes(raw)
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	return &SecretKey{buf: memguard.NewBufferFromBytes(raw)}, nil
}

// Bytes exposes the key material. The slice is only valid until Destroy.
func (k *SecretKey) Bytes() []byte {
	if k == nil || k.buf == nil || !k.buf.IsAlive() {
		return nil
	}
	return k.buf.Bytes()
}

// Equal reports whether both keys hold the same bytes, in constant time
func (k *SecretKey) Equal(other *SecretKey) bool {
	a, b := k.Bytes(), other.Bytes()
	if a == nil || b == nil {
		return false
	}
	return ConstantTimeCompare(a, b)
}

// Destroy wipes the key from memory
func (k *SecretKey) Destroy() {
	if k != nil && k.buf != nil {
		k.buf.Destroy()
	}
}

// String never reveals key material.
func (k *SecretKey) String() string { return "SecretKey(redacted)" }

// GoString never reveals key material.
func (k *SecretKey) GoString() string { return k.String() }

// Seal encrypts and authenticates plaintext under key.
// A fresh random nonce is prepended to the result.
func Seal(key *SecretKey, plaintext []byte) ([]byte, error) {
	raw := key.Bytes()
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}

	aead, err := chacha20poly1305.NewX(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open verifies and decrypts a sealed box produced by Seal.
// Nothing is returned unless the tag verifies.
func Open(key *SecretKey, sealed []byte) ([]byte, error) {
	raw := key.Bytes()
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(sealed) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	aead, err := chacha20poly1305.NewX(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	nonce, ciphertext := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
