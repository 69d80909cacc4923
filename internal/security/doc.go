// Package security confines vlt's file operations to the storage root.
//
// Vault names become file names, so every name is validated before it is
// joined to a path: it must be a single local path element. Root wraps
// os.Root so reads, writes and removals cannot leave the directory even if
// validation were bypassed.
package security
