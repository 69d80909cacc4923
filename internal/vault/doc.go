// Package vault implements the vault storage engine.
//
// A vault named N is persisted as two artifacts in a storage backend:
//   - N.vlt      sealed JSON payload {"name": N, "entries": {...}}
//   - N.vlt.key  the raw 32-byte secret key that seals it
//
// KeyManager creates and loads key artifacts, Seal and Open convert between
// a Vault and its sealed form, and Store ties both to the naming convention.
// Every failure is reported as an *Error carrying a Kind, so callers can
// branch with errors.Is against the package sentinels.
package vault
