package vault

import (
	"fmt"

	"github.com/illarion/vlt/internal/crypto"
	"github.com/illarion/vlt/internal/storage"
)

// KeyManager creates and loads raw key artifacts
type KeyManager struct {
	backend storage.Backend
}

// NewKeyManager returns a KeyManager writing to backend
func NewKeyManager(backend storage.Backend) *KeyManager {
	return &KeyManager{backend: backend}
}

// GenerateAndStore creates a random key and writes its raw bytes to file,
// replacing any existing artifact.
func (m *KeyManager) GenerateAndStore(file string) (*crypto.SecretKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, cryptoError("failed to generate key", err)
	}

	if err := m.Store(file, key); err != nil {
		key.Destroy()
		return nil, err
	}
	return key, nil
}

// Store writes existing key material to file
func (m *KeyManager) Store(file string, key *crypto.SecretKey) error {
	raw := key.Bytes()
	if len(raw) != crypto.KeySize {
		return newError(KindKeyInvalid, "failed to store key", crypto.ErrInvalidKey)
	}
	if err := m.backend.Write(file, raw); err != nil {
		return newError(KindIO, "failed to store key", err)
	}
	return nil
}

// Load reads a key artifact. Anything other than exactly KeySize bytes is
// rejected rather than padded.
func (m *KeyManager) Load(file string) (*crypto.SecretKey, error) {
	raw, err := m.backend.Read(file)
	if err != nil {
		return nil, storageError("failed to load key", err)
	}

	key, err := crypto.NewSecretKey(raw)
	if err != nil {
		return nil, cryptoError(fmt.Sprintf("failed to load key %s", file), err)
	}
	return key, nil
}
