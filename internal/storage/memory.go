package storage

import (
	"fmt"
	"sync"
)

// MemoryBackend keeps artifacts in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (m *MemoryBackend) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Exists(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.blobs[name]
	return ok, nil
}

func (m *MemoryBackend) Remove(names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := m.blobs[name]; !ok {
			return &RemoveError{Removed: removed, Failed: name, Err: fmt.Errorf("%w: %s", ErrNotFound, name)}
		}
		delete(m.blobs, name)
		removed = append(removed, name)
	}
	return nil
}

func (m *MemoryBackend) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		names = append(names, name)
	}
	return names, nil
}

func (m *MemoryBackend) Close() error { return nil }
