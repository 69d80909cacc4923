package vault

import (
	"errors"
	"fmt"
	"sort"

	"github.com/illarion/vlt/internal/crypto"
	"github.com/illarion/vlt/internal/storage"
)

// CreateOptions controls Create
type CreateOptions struct {
	// Force replaces an existing vault. Its old key is overwritten and the
	// old contents become unrecoverable.
	Force bool
}

// Store maps vault names to their artifacts in a backend
type Store struct {
	backend storage.Backend
	keys    *KeyManager
}

// NewStore returns a Store over backend
func NewStore(backend storage.Backend) *Store {
	return &Store{
		backend: backend,
		keys:    NewKeyManager(backend),
	}
}

// Backend returns the underlying storage backend
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// Create writes a new key and an empty sealed vault
func (s *Store) Create(name string, opts CreateOptions) (*Vault, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	if !opts.Force {
		for _, file := range []string{KeyFileName(name), VaultFileName(name)} {
			exists, err := s.backend.Exists(file)
			if err != nil {
				return nil, newError(KindIO, "failed to check "+file, err)
			}
			if exists {
				return nil, newError(KindExists, fmt.Sprintf("vault %q already exists", name), nil)
			}
		}
	}

	// A forced create keeps the old key until the new payload is written
	var prevKey []byte
	if opts.Force {
		raw, err := s.backend.Read(KeyFileName(name))
		switch {
		case err == nil:
			prevKey = raw
			defer crypto.ClearBytes(prevKey)
		case !errors.Is(err, storage.ErrNotFound):
			return nil, storageError("failed to read key "+KeyFileName(name), err)
		}
	}

	key, err := s.keys.GenerateAndStore(KeyFileName(name))
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	v := New(name)
	if err := s.write(key, v); err != nil {
		if rerr := s.rollbackKey(name, prevKey); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}
	return v, nil
}

// rollbackKey undoes the key write of a failed Create: the previous key is
// put back, or the new one removed when there was none.
func (s *Store) rollbackKey(name string, prev []byte) error {
	file := KeyFileName(name)
	if prev != nil {
		if err := s.backend.Write(file, prev); err != nil {
			return newError(KindIO, "failed to restore previous key "+file, err)
		}
		return nil
	}
	if err := s.backend.Remove(file); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return newError(KindIO, "failed to remove key "+file, err)
	}
	return nil
}

// Load reads and opens a vault
func (s *Store) Load(name string) (*Vault, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	key, err := s.keys.Load(KeyFileName(name))
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	data, err := s.backend.Read(VaultFileName(name))
	if err != nil {
		return nil, storageError("failed to read vault "+name, err)
	}

	v, err := Open(key, data)
	if err != nil {
		return nil, err
	}
	if v.Name != name {
		return nil, newError(KindDecode, fmt.Sprintf("vault file %s holds vault %q", VaultFileName(name), v.Name), nil)
	}
	return v, nil
}

// Persist re-seals v under its key and atomically replaces the payload
func (s *Store) Persist(v *Vault) error {
	if err := ValidateName(v.Name); err != nil {
		return err
	}

	key, err := s.keys.Load(KeyFileName(v.Name))
	if err != nil {
		return err
	}
	defer key.Destroy()

	return s.write(key, v)
}

func (s *Store) write(key *crypto.SecretKey, v *Vault) error {
	sealed, err := Seal(key, v)
	if err != nil {
		return err
	}
	if err := s.backend.Write(VaultFileName(v.Name), sealed); err != nil {
		return newError(KindIO, "failed to write vault "+v.Name, err)
	}
	return nil
}

// Delete removes the key artifact and then the payload. Artifacts that are
// already missing are skipped; a vault with neither is not found.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	var present []string
	for _, file := range []string{KeyFileName(name), VaultFileName(name)} {
		exists, err := s.backend.Exists(file)
		if err != nil {
			return newError(KindIO, "failed to check "+file, err)
		}
		if exists {
			present = append(present, file)
		}
	}
	if len(present) == 0 {
		return newError(KindNotFound, fmt.Sprintf("vault %q not found", name), nil)
	}

	if err := s.backend.Remove(present...); err != nil {
		var rerr *storage.RemoveError
		if errors.As(err, &rerr) && len(rerr.Removed) > 0 {
			return newError(KindIO, fmt.Sprintf("vault %q partially deleted, %s remains", name, rerr.Failed), err)
		}
		return storageError("failed to delete vault "+name, err)
	}
	return nil
}

// Exists reports whether both artifacts of a vault are present
func (s *Store) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	for _, file := range []string{KeyFileName(name), VaultFileName(name)} {
		exists, err := s.backend.Exists(file)
		if err != nil {
			return false, newError(KindIO, "failed to check "+file, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}

// List returns the sorted names of vaults that have both artifacts
func (s *Store) List() ([]string, error) {
	files, err := s.backend.List()
	if err != nil {
		return nil, newError(KindIO, "failed to list vaults", err)
	}

	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	var names []string
	for _, f := range files {
		name, ok := NameFromVaultFile(f)
		if ok && present[KeyFileName(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadKey returns the key of an existing vault. The caller must Destroy it.
func (s *Store) LoadKey(name string) (*crypto.SecretKey, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return s.keys.Load(KeyFileName(name))
}

// RestoreKey writes key as the vault's key file after checking that it opens
// the existing payload.
func (s *Store) RestoreKey(name string, key *crypto.SecretKey) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	data, err := s.backend.Read(VaultFileName(name))
	if err != nil {
		return storageError("failed to read vault "+name, err)
	}
	v, err := Open(key, data)
	if err != nil {
		return err
	}
	if v.Name != name {
		return newError(KindDecode, fmt.Sprintf("vault file %s holds vault %q", VaultFileName(name), v.Name), nil)
	}

	return s.keys.Store(KeyFileName(name), key)
}
