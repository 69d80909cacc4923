package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/awnumar/memguard"

	"github.com/illarion/vlt/internal/core"
	"github.com/illarion/vlt/internal/logging"
	"github.com/illarion/vlt/internal/vault"
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// clipboardAvailable reports whether a clipboard utility is present
var clipboardAvailable = func() bool { return !clipboard.Unsupported }

// Terminal checks, replaced in tests
var (
	isTerminal       = func() bool { return core.IsTerminal(os.Stdin) }
	isOutputTerminal = func() bool { return core.IsTerminal(os.Stdout) }
)

// confirm asks before destructive actions; replaced in tests
var confirm = core.Confirm

// HandleError prints err with a hint, wipes key buffers and exits
func HandleError(err error) {
	printError(os.Stderr, err)
	memguard.SafeExit(1)
}

func printError(w io.Writer, err error) {
	logging.Logger{W: w}.Errorf("%v", err)

	switch {
	case errors.Is(err, vault.ErrNotFound):
		fmt.Fprintf(w, "Use 'vlt list' to see existing vaults or 'vlt new <name>' to create one\n")
	case errors.Is(err, vault.ErrExists):
		fmt.Fprintf(w, "Use 'vlt new --force <name>' to replace it (the old contents are lost)\n")
	case errors.Is(err, vault.ErrAuthFailed):
		fmt.Fprintf(w, "The vault file was modified or does not belong to this key\n")
	case errors.Is(err, vault.ErrKeyInvalid):
		fmt.Fprintf(w, "The key file must hold exactly 32 bytes; 'vlt keyring restore <name>' can recover an escrowed key\n")
	case errors.Is(err, vault.ErrDecode):
		fmt.Fprintf(w, "The vault decrypted but its contents are not a valid vault\n")
	case errors.Is(err, vault.ErrNoSuchKey), errors.Is(err, vault.ErrUnknownKey):
		fmt.Fprintf(w, "Use 'vlt list <name>' to see the keys in a vault\n")
	case errors.Is(err, core.ErrNotDotenv):
		fmt.Fprintf(w, "Rename or remove those entries, or read them with 'vlt key'\n")
	case errors.Is(err, core.ErrCompactUnsupported):
		fmt.Fprintf(w, "Compaction applies to the bolt backend only (--backend bolt)\n")
	}
}

// formatSize formats bytes into human-readable format
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
