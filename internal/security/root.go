package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyName     = errors.New("empty name not allowed")
	ErrNameSeparator = errors.New("name must not contain path separators")
	ErrNameNotLocal  = errors.New("name is not a local file name")
)

const tempSuffix = ".tmp-"

// ValidateName checks that name can be used as a single file name inside the
// storage root. It rejects:
// - Empty names
// - Names containing / or the platform separator
// - "." and ".."
// - Names that are not local (reserved device names on Windows, etc.)
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: %s", ErrNameSeparator, name)
	}
	if name == "." || name == ".." || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %s", ErrNameNotLocal, name)
	}
	if strings.Contains(name, tempSuffix) {
		return fmt.Errorf("%w: %s", ErrNameNotLocal, name)
	}
	return nil
}

// Root provides file operations confined to a directory using os.Root.
type Root struct {
	root *os.Root
	path string
}

// OpenRoot opens dir as a confined root. The directory is created with
// owner-only permissions if missing.
func OpenRoot(dir string) (*Root, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}

	return &Root{root: root, path: absPath}, nil
}

// Path returns the absolute directory of the root
func (r *Root) Path() string {
	return r.path
}

// Close releases the root handle
func (r *Root) Close() error {
	if r.root != nil {
		return r.root.Close()
	}
	return nil
}

// ReadFile reads a file inside the root
func (r *Root) ReadFile(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}

	f, err := r.root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}

	return io.ReadAll(f)
}

// Stat stats a file inside the root
func (r *Root) Stat(name string) (os.FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	return r.root.Stat(name)
}

// Remove removes a file inside the root
func (r *Root) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	return r.root.Remove(name)
}

// WriteFileAtomic writes data to a temporary file in the root, syncs it and
// renames it over name, so readers see either the old or the new contents.
func (r *Root) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp name: %w", err)
	}
	tmp := name + tempSuffix + hex.EncodeToString(suffix)

	f, err := r.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	// Best-effort cleanup if anything fails before rename.
	renamed := false
	defer func() {
		if !renamed {
			_ = r.root.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// Both names were validated as single local elements above.
	if err := os.Rename(filepath.Join(r.path, tmp), filepath.Join(r.path, name)); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Entries lists the regular file names directly inside the root,
// skipping in-flight temporary files.
func (r *Root) Entries() ([]string, error) {
	entries, err := fs.ReadDir(r.root.FS(), ".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.Contains(e.Name(), tempSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
