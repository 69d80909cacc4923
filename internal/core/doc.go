// Package core implements the vlt commands on top of the vault store.
//
// A Vlt is opened over one storage root and backend. Every command is a
// single load, mutate and persist cycle against one named vault; nothing is
// cached between calls. Methods check the context before touching storage so
// an interrupted process stops between steps rather than mid-write.
//
// Mutating commands are appended to the audit log when one is configured.
package core
