// Package logging provides the leveled console logger used by vlt commands.
//
// Info lines appear with --verbose and debug lines with --debug. Warnings and
// errors are always shown. Everything goes to stderr so that command output on
// stdout stays pipeable.
//
// Callers never pass key material or entry values to the logger.
package logging
