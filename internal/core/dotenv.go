package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"

	"github.com/illarion/vlt/internal/audit"
)

var ErrNotDotenv = errors.New("entries cannot be written as dotenv")

// Characters escaped inside a double-quoted dotenv value
var dotenvEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
	`!`, `\!`,
	`$`, `\$`,
	"`", "\\`",
)

// Import upserts every variable of a dotenv document into a vault and
// persists once. It returns the number of entries written.
func (v *Vlt) Import(ctx context.Context, name string, r io.Reader) (n int, err error) {
	defer func() { v.record(audit.Event{Operation: "import", Vault: name, Count: n}, err) }()

	vars, err := godotenv.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse dotenv input: %w", err)
	}

	vt, err := v.load(ctx, name)
	if err != nil {
		return 0, err
	}
	for key, value := range vars {
		vt.Set(key, value)
	}
	if err := v.persist(ctx, vt); err != nil {
		return 0, err
	}

	v.log.Infof("imported %d entries into %s", len(vars), name)
	return len(vars), nil
}

// Export renders a vault as a dotenv document with keys sorted. Every line
// reads back to the exact entry; keys that are not dotenv names and values
// no quoting can carry are reported together as ErrNotDotenv.
func (v *Vlt) Export(ctx context.Context, name string) (string, error) {
	vt, err := v.load(ctx, name)
	if err != nil {
		return "", err
	}

	var (
		b   strings.Builder
		bad []string
	)
	for _, key := range vt.Keys() {
		if !isDotenvName(key) {
			bad = append(bad, fmt.Sprintf("%q (invalid name)", key))
			continue
		}
		line, ok := dotenvLine(key, vt.Entries[key])
		if !ok {
			bad = append(bad, fmt.Sprintf("%q (value)", key))
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(bad) > 0 {
		return "", fmt.Errorf("%w: %s", ErrNotDotenv, strings.Join(bad, ", "))
	}
	return b.String(), nil
}

// isDotenvName matches the variable names godotenv reads back. Its parser
// checks names byte by byte, so only ASCII letters and digits are safe.
func isDotenvName(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '_', c == '.':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// dotenvLine picks the first form of KEY=value that parses back unchanged:
// double-quoted and escaped, then single-quoted, then bare.
func dotenvLine(key, value string) (string, bool) {
	candidates := []string{
		key + `="` + dotenvEscaper.Replace(value) + `"`,
		key + `='` + value + `'`,
		key + `=` + value,
	}
	for _, line := range candidates {
		vars, err := godotenv.Unmarshal(line)
		if err != nil || len(vars) != 1 {
			continue
		}
		if got, ok := vars[key]; ok && got == value {
			return line, true
		}
	}
	return "", false
}
