package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Confirm asks a yes/no question on the terminal and reports whether the
// answer was yes. Anything but y/Y is a no.
func Confirm(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	choice, err := readChoice(os.Stdin, os.Stderr)
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return choice == "y", nil
}

// readChoice reads a single character choice from in
func readChoice(in *os.File, echo io.Writer) (string, error) {
	// Try to use raw mode for single-key input
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		// Not a terminal, read a line instead
		return readLineChoice(in)
	}
	defer func() { _ = term.Restore(int(in.Fd()), oldState) }()

	buf := make([]byte, 1)
	if _, err := in.Read(buf); err != nil {
		return "", err
	}

	choice := strings.ToLower(string(buf[0]))
	fmt.Fprintf(echo, "%s\r\n", choice) // Echo the choice
	return choice, nil
}

func readLineChoice(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return "", nil
	}
	return line[:1], nil
}
