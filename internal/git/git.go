package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status contains git exposure information for a set of key files
type Status struct {
	IsRepo      bool
	TrackedKeys []string // Key files tracked by git (bad)
	IgnoredKeys []string // Key files in .gitignore (good)
	ExposedKeys []string // Key files neither tracked nor ignored (warning)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckKeyFiles classifies keyFiles, given relative to workDir
func CheckKeyFiles(workDir string, keyFiles []string) *Status {
	status := &Status{}
	if !IsGitRepo(workDir) {
		return status
	}
	status.IsRepo = true

	for _, file := range keyFiles {
		switch {
		case IsTracked(workDir, file):
			status.TrackedKeys = append(status.TrackedKeys, file)
		case IsIgnored(workDir, file):
			status.IgnoredKeys = append(status.IgnoredKeys, file)
		default:
			status.ExposedKeys = append(status.ExposedKeys, file)
		}
	}
	return status
}

// OK reports whether no key file is tracked or at risk of being added
func (s *Status) OK() bool {
	return len(s.TrackedKeys) == 0 && len(s.ExposedKeys) == 0
}

// Format renders the status for display. Empty outside a repository.
func (s *Status) Format() string {
	if !s.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("Git:\n")

	if len(s.TrackedKeys) > 0 {
		fmt.Fprintf(&result, "   error: %d key file(s) tracked by git:\n", len(s.TrackedKeys))
		for _, file := range s.TrackedKeys {
			fmt.Fprintf(&result, "      - %s (run: git rm --cached %s)\n", file, file)
		}
	}
	for _, file := range s.ExposedKeys {
		fmt.Fprintf(&result, "   warning: %s not in .gitignore (add *.vlt.key to .gitignore)\n", file)
	}
	if s.OK() {
		fmt.Fprintf(&result, "   ok: %d key file(s) ignored by git\n", len(s.IgnoredKeys))
	}

	return result.String()
}
