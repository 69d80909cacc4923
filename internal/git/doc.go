// Package git checks whether vault key files are exposed to git.
//
// Checks performed:
//   - Whether a key file is tracked by git (must not be)
//   - Whether a key file is covered by .gitignore (should be)
//
// Sealed .vlt payloads may be committed; they are useless without the key.
package git
