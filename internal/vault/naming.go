package vault

import (
	"fmt"
	"strings"

	"github.com/illarion/vlt/internal/security"
)

const (
	VaultExt = ".vlt" // Sealed payload suffix
	KeyExt   = ".key" // Appended to the payload name for the key file
)

// VaultFileName returns the payload artifact name for a vault
func VaultFileName(name string) string {
	return name + VaultExt
}

// KeyFileName returns the key artifact name for a vault
func KeyFileName(name string) string {
	return VaultFileName(name) + KeyExt
}

// NameFromVaultFile reverses VaultFileName. It reports false for
// artifacts that are not payload files.
func NameFromVaultFile(file string) (string, bool) {
	name, ok := strings.CutSuffix(file, VaultExt)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// ValidateName checks that a vault name maps to usable file names
func ValidateName(name string) error {
	err := security.ValidateName(name)
	if err == nil {
		err = security.ValidateName(KeyFileName(name))
	}
	if err != nil {
		return newError(KindInvalidName, fmt.Sprintf("invalid vault name %q", name), err)
	}
	return nil
}
