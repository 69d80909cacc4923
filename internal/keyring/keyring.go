// Package keyring escrows vault keys in the OS keyring.
//
// Entries live under the "vlt" service. The account is the absolute path of
// the vault inside its storage root, so equally named vaults in different
// roots do not collide. Key bytes are stored hex encoded.
package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const serviceName = "vlt"

// ErrNotFound is returned when no key is stored for the account
var ErrNotFound = keyring.ErrNotFound

// Account returns the keyring account for vault name under root
func Account(root, name string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	return filepath.Join(abs, name), nil
}

// SaveKey stores raw key bytes for account
func SaveKey(account string, key []byte) error {
	encoded := hex.EncodeToString(key)
	return keyring.Set(serviceName, account, encoded)
}

// GetKey retrieves raw key bytes for account.
// The caller is responsible for wiping the returned slice.
func GetKey(account string) ([]byte, error) {
	encoded, err := keyring.Get(serviceName, account)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("keyring entry is not a vault key: %w", err)
	}
	return key, nil
}

// DeleteKey removes the stored key
func DeleteKey(account string) error {
	return keyring.Delete(serviceName, account)
}

// HasKey checks if a key is stored for account
func HasKey(account string) bool {
	_, err := keyring.Get(serviceName, account)
	return err == nil
}

// IsNotFound reports whether err means the keyring has no entry
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
