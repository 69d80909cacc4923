package vault

import (
	"errors"
	"fmt"

	"github.com/illarion/vlt/internal/crypto"
	"github.com/illarion/vlt/internal/storage"
)

// Kind classifies a vault failure
type Kind int

const (
	KindUnknown     Kind = iota
	KindIO               // File missing on write, permission denied, disk failure
	KindDecode           // Payload is not a valid vault after decryption
	KindKeyInvalid       // Key material is not 32 bytes
	KindAuthFailed       // Tampered payload or wrong key
	KindNotFound         // Vault or one of its artifacts does not exist
	KindExists           // Vault already exists
	KindUnknownKey       // Entry to delete is absent
	KindNoSuchKey        // Entry to read is absent
	KindInvalidName      // Vault name cannot be used as a file name
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindIO:          "io",
	KindDecode:      "decode",
	KindKeyInvalid:  "key-invalid",
	KindAuthFailed:  "auth-failed",
	KindNotFound:    "not-found",
	KindExists:      "exists",
	KindUnknownKey:  "unknown-key",
	KindNoSuchKey:   "no-such-key",
	KindInvalidName: "invalid-name",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned by this package
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Reason
	case e.Reason == "":
		return e.Err.Error()
	default:
		return e.Reason + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrIO          = &Error{Kind: KindIO, Reason: "i/o failure"}
	ErrDecode      = &Error{Kind: KindDecode, Reason: "vault payload is corrupt"}
	ErrKeyInvalid  = &Error{Kind: KindKeyInvalid, Reason: "invalid vault key"}
	ErrAuthFailed  = &Error{Kind: KindAuthFailed, Reason: "vault authentication failed"}
	ErrNotFound    = &Error{Kind: KindNotFound, Reason: "vault not found"}
	ErrExists      = &Error{Kind: KindExists, Reason: "vault already exists"}
	ErrUnknownKey  = &Error{Kind: KindUnknownKey, Reason: "unknown key"}
	ErrNoSuchKey   = &Error{Kind: KindNoSuchKey, Reason: "no such key in this vault"}
	ErrInvalidName = &Error{Kind: KindInvalidName, Reason: "invalid vault name"}
)

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// storageError classifies a backend error
func storageError(reason string, err error) *Error {
	if errors.Is(err, storage.ErrNotFound) {
		return newError(KindNotFound, reason, err)
	}
	return newError(KindIO, reason, err)
}

// cryptoError classifies an AEAD or key construction error
func cryptoError(reason string, err error) *Error {
	switch {
	case errors.Is(err, crypto.ErrInvalidKey):
		return newError(KindKeyInvalid, reason, err)
	case errors.Is(err, crypto.ErrAuthFailed), errors.Is(err, crypto.ErrInvalidCiphertext):
		return newError(KindAuthFailed, reason, err)
	default:
		return newError(KindIO, reason, err)
	}
}
