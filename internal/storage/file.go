package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/vlt/internal/security"
)

// FileBackend keeps each artifact in its own file under a root directory.
// It does not lock: concurrent writers to the same artifact race and the
// last rename wins.
type FileBackend struct {
	root *security.Root
}

// NewFileBackend opens (and creates if needed) the root directory
func NewFileBackend(dir string) (*FileBackend, error) {
	root, err := security.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &FileBackend{root: root}, nil
}

// Dir returns the absolute root directory
func (b *FileBackend) Dir() string {
	return b.root.Path()
}

func (b *FileBackend) Read(name string) ([]byte, error) {
	data, err := b.root.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (b *FileBackend) Write(name string, data []byte) error {
	if err := b.root.WriteFileAtomic(name, data, FilePermSecure); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) Exists(name string) (bool, error) {
	_, err := b.root.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes the files one after another with no rollback.
func (b *FileBackend) Remove(names ...string) error {
	removed := make([]string, 0, len(names))
	for _, name := range names {
		err := b.root.Remove(name)
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return &RemoveError{Removed: removed, Failed: name, Err: err}
		}
		removed = append(removed, name)
	}
	return nil
}

func (b *FileBackend) List() ([]string, error) {
	names, err := b.root.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", b.root.Path(), err)
	}
	return names, nil
}

func (b *FileBackend) Close() error {
	return b.root.Close()
}
