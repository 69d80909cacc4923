package storage

import (
	"errors"
	"fmt"
	"strings"
)

const FilePermSecure = 0600 // File: owner rw only

// Backend kinds accepted by Open
const (
	KindFile = "file"
	KindBolt = "bolt"
)

var ErrNotFound = errors.New("artifact not found")

// Backend stores named, opaque blobs.
type Backend interface {
	// Read returns the artifact contents, or an error wrapping ErrNotFound.
	Read(name string) ([]byte, error)
	// Write creates or atomically replaces the artifact.
	Write(name string, data []byte) error
	// Exists reports whether the artifact is present.
	Exists(name string) (bool, error)
	// Remove deletes artifacts in order. On failure it returns a *RemoveError.
	Remove(names ...string) error
	// List returns the names of all artifacts.
	List() ([]string, error)
	// Close releases the backend.
	Close() error
}

// Compactor is implemented by backends that can reclaim unused space.
type Compactor interface {
	Compact() error
}

// RemoveError reports a Remove that stopped partway. Removed lists the
// artifacts that are already gone.
type RemoveError struct {
	Removed []string
	Failed  string
	Err     error
}

func (e *RemoveError) Error() string {
	if len(e.Removed) == 0 {
		return fmt.Sprintf("failed to remove %s: %v", e.Failed, e.Err)
	}
	return fmt.Sprintf("failed to remove %s after removing %s: %v", e.Failed, strings.Join(e.Removed, ", "), e.Err)
}

func (e *RemoveError) Unwrap() error { return e.Err }

// Options selects and configures a backend
type Options struct {
	Kind     string // "file" (default) or "bolt"
	Root     string // Directory holding the artifacts or the database
	BoltFile string // Database file name inside Root for the bolt backend
}

// Open creates the backend described by opts
func Open(opts Options) (Backend, error) {
	switch opts.Kind {
	case "", KindFile:
		return NewFileBackend(opts.Root)
	case KindBolt:
		if opts.BoltFile == "" {
			return nil, fmt.Errorf("bolt backend requires a database file name")
		}
		return OpenBolt(opts.Root, opts.BoltFile)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", opts.Kind)
	}
}
