// Package storage provides the byte-level backends that hold vault artifacts.
//
// A backend stores opaque, already-encrypted blobs under flat names such as
// "work.vlt" and "work.vlt.key". Three implementations exist:
//   - file: one file per artifact in a directory (the default, interoperable layout)
//   - bolt: all artifacts in a single BBolt database
//   - memory: an in-process map, for tests
//
// Writes replace an artifact atomically. The file backend does this with a
// temporary file and rename; BBolt does it with a transaction. BBolt also
// holds an exclusive file lock for as long as the database is open.
package storage
