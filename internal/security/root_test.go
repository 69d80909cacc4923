package security

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		// Valid names
		{"simple", "test2", nil},
		{"with extension", "work.vlt", nil},
		{"hidden", ".secrets", nil},
		{"spaces", "my vault", nil},

		// Rejected names
		{"empty", "", ErrEmptyName},
		{"slash", "a/b", ErrNameSeparator},
		{"parent", "../escape", ErrNameSeparator},
		{"absolute", "/etc/passwd", ErrNameSeparator},
		{"dot", ".", ErrNameNotLocal},
		{"dot dot", "..", ErrNameNotLocal},
		{"temp file", "v.vlt.tmp-abc", ErrNameNotLocal},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests, struct {
			name    string
			input   string
			wantErr error
		}{"reserved", "NUL", ErrNameNotLocal})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error for %q: %v", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v for %q, got %v", tt.wantErr, tt.input, err)
			}
		})
	}
}

func TestRoot_WriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()

	root, err := OpenRoot(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open root: %v", err)
	}
	defer root.Close()

	if err := root.WriteFileAtomic("v.vlt", []byte("first"), 0600); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := root.WriteFileAtomic("v.vlt", []byte("second"), 0600); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "v.vlt"))
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("Content mismatch: got %q, want %q", content, "second")
	}

	// No temporary files should be left behind
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), tempSuffix) {
			t.Errorf("Temporary file left behind: %s", e.Name())
		}
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(tmpDir, "v.vlt"))
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("File mode = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestRoot_RejectsEscapes(t *testing.T) {
	tmpDir := t.TempDir()
	outsideDir := filepath.Dir(tmpDir)
	targetFile := filepath.Join(outsideDir, "should_not_be_written.txt")
	defer os.Remove(targetFile)

	root, err := OpenRoot(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open root: %v", err)
	}
	defer root.Close()

	if err := root.WriteFileAtomic("../should_not_be_written.txt", []byte("pwned"), 0600); err == nil {
		t.Error("Expected error when writing outside root, got none")
	}
	if _, statErr := os.Stat(targetFile); statErr == nil {
		t.Error("File was created outside root")
	}

	if _, err := root.ReadFile("../etc/passwd"); err == nil {
		t.Error("Expected error when reading outside root")
	}
	if err := root.Remove("../x"); err == nil {
		t.Error("Expected error when removing outside root")
	}
	if _, err := root.Stat("/etc/passwd"); err == nil {
		t.Error("Expected error when stating absolute path")
	}
}

func TestRoot_ReadStatRemove(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "a.vlt"), []byte("payload"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	root, err := OpenRoot(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open root: %v", err)
	}
	defer root.Close()

	data, err := root.ReadFile("a.vlt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Content mismatch: got %q", data)
	}

	if _, err := root.ReadFile("missing.vlt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}

	if _, err := root.Stat("a.vlt"); err != nil {
		t.Errorf("Stat failed: %v", err)
	}

	if err := root.Remove("a.vlt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := root.Stat("a.vlt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected file to be gone, got %v", err)
	}
}

func TestRoot_Entries(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"a.vlt", "a.vlt.key", "b.vlt.tmp-123456"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0600); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "sub"), 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	root, err := OpenRoot(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open root: %v", err)
	}
	defer root.Close()

	names, err := root.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	sort.Strings(names)

	want := []string{"a.vlt", "a.vlt.key"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Entries = %v, want %v", names, want)
	}
}

func TestOpenRoot_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "vaults")

	root, err := OpenRoot(dir)
	if err != nil {
		t.Fatalf("OpenRoot failed: %v", err)
	}
	defer root.Close()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Root directory was not created at %q", dir)
	}
	if root.Path() != dir {
		t.Errorf("Path() = %q, want %q", root.Path(), dir)
	}
}
