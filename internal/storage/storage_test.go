package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// backends returns a fresh instance of every backend, keyed by kind
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open file backend: %v", err)
	}
	bolt, err := OpenBolt(t.TempDir(), "vaults.db")
	if err != nil {
		t.Fatalf("Failed to open bolt backend: %v", err)
	}

	all := map[string]Backend{
		"file":   file,
		"bolt":   bolt,
		"memory": NewMemoryBackend(),
	}
	t.Cleanup(func() {
		for _, b := range all {
			b.Close()
		}
	})
	return all
}

func TestBackendReadWrite(t *testing.T) {
	for kind, b := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			if err := b.Write("a.vlt", []byte("first")); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := b.Write("a.vlt", []byte("second")); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}

			data, err := b.Read("a.vlt")
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if string(data) != "second" {
				t.Errorf("Data mismatch: got %q, want %q", data, "second")
			}

			exists, err := b.Exists("a.vlt")
			if err != nil || !exists {
				t.Errorf("Exists = %v, %v; want true", exists, err)
			}
		})
	}
}

func TestBackendReadMissing(t *testing.T) {
	for kind, b := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			if _, err := b.Read("missing.vlt"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
			exists, err := b.Exists("missing.vlt")
			if err != nil || exists {
				t.Errorf("Exists = %v, %v; want false", exists, err)
			}
		})
	}
}

func TestBackendRemove(t *testing.T) {
	for kind, b := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			for _, name := range []string{"a.vlt.key", "a.vlt"} {
				if err := b.Write(name, []byte("x")); err != nil {
					t.Fatalf("Write %s failed: %v", name, err)
				}
			}

			if err := b.Remove("a.vlt.key", "a.vlt"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}

			names, err := b.List()
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(names) != 0 {
				t.Errorf("Expected no artifacts, got %v", names)
			}
		})
	}
}

func TestBackendRemoveMissing(t *testing.T) {
	for kind, b := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			if err := b.Write("a.vlt.key", []byte("x")); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			err := b.Remove("a.vlt.key", "a.vlt")
			var rerr *RemoveError
			if !errors.As(err, &rerr) {
				t.Fatalf("Expected *RemoveError, got %v", err)
			}
			if rerr.Failed != "a.vlt" {
				t.Errorf("Failed = %q, want a.vlt", rerr.Failed)
			}
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound in chain, got %v", err)
			}
		})
	}
}

func TestBackendList(t *testing.T) {
	for kind, b := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			for _, name := range []string{"b.vlt", "a.vlt", "a.vlt.key"} {
				if err := b.Write(name, []byte("x")); err != nil {
					t.Fatalf("Write %s failed: %v", name, err)
				}
			}

			names, err := b.List()
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			sort.Strings(names)
			if got := strings.Join(names, ","); got != "a.vlt,a.vlt.key,b.vlt" {
				t.Errorf("List = %s", got)
			}
		})
	}
}

func TestRemovePartialFailureKeepsOrder(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open file backend: %v", err)
	}
	defer b.Close()

	if err := b.Write("a.vlt.key", []byte("k")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// The file backend removes sequentially, so the key is already gone
	err = b.Remove("a.vlt.key", "a.vlt")
	var rerr *RemoveError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expected *RemoveError, got %v", err)
	}
	if len(rerr.Removed) != 1 || rerr.Removed[0] != "a.vlt.key" {
		t.Errorf("Removed = %v, want [a.vlt.key]", rerr.Removed)
	}
	if exists, _ := b.Exists("a.vlt.key"); exists {
		t.Error("Key file should have been removed before the failure")
	}
}

func TestOpenOptions(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default is file", Options{Root: dir}, false},
		{"file", Options{Kind: KindFile, Root: dir}, false},
		{"bolt", Options{Kind: KindBolt, Root: dir, BoltFile: "vaults.db"}, false},
		{"bolt without file", Options{Kind: KindBolt, Root: dir}, true},
		{"bolt with bad file", Options{Kind: KindBolt, Root: dir, BoltFile: "../x.db"}, true},
		{"unknown", Options{Kind: "s3", Root: dir}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(tt.opts)
			if tt.wantErr {
				if err == nil {
					b.Close()
					t.Error("Expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			b.Close()
		})
	}
}

func TestFileBackendDir(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("Failed to open file backend: %v", err)
	}
	defer b.Close()

	if b.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", b.Dir(), dir)
	}
	if err := b.Write("x.vlt", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.vlt")); err != nil {
		t.Errorf("Artifact not written as a plain file: %v", err)
	}
}
