package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/vlt/internal/vault"
)

const fingerprintLen = 12 // Hex digits of SHA-256 shown for masked values

// Diff compares two vaults line by line, one "key=value" line per entry.
// Values are replaced by a short fingerprint unless showValues is set.
// Returns the empty string when both vaults hold the same entries.
func (v *Vlt) Diff(ctx context.Context, nameA, nameB string, showValues bool) (string, error) {
	a, err := v.load(ctx, nameA)
	if err != nil {
		return "", err
	}
	b, err := v.load(ctx, nameB)
	if err != nil {
		return "", err
	}

	return GenerateUnifiedDiff(nameA, nameB, renderEntries(a, showValues), renderEntries(b, showValues)), nil
}

// renderEntries writes one line per entry in key order
func renderEntries(vt *vault.Vault, showValues bool) string {
	var sb strings.Builder
	for _, key := range vt.Keys() {
		val, _ := vt.Get(key)
		if !showValues {
			val = fingerprint(val)
		}
		fmt.Fprintf(&sb, "%s=%s\n", key, val)
	}
	return sb.String()
}

// fingerprint identifies a value without revealing it
func fingerprint(val string) string {
	sum := sha256.Sum256([]byte(val))
	return "sha256:" + hex.EncodeToString(sum[:])[:fingerprintLen]
}

// GenerateUnifiedDiff produces a line diff of two texts with ---/+++ headers.
// Returns the empty string if the texts are identical.
func GenerateUnifiedDiff(nameA, nameB, textA, textB string) string {
	if textA == textB {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff
	a, b, lineArray := dmp.DiffLinesToChars(textA, textB)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var result strings.Builder
	fmt.Fprintf(&result, "--- a/%s\n", nameA)
	fmt.Fprintf(&result, "+++ b/%s\n", nameB)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			result.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				result.WriteByte('\n')
			}
		}
	}

	return result.String()
}
