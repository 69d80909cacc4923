// Package audit appends a JSON Lines record for every mutating vlt command.
//
// Records carry the operation, vault name, outcome and error text. They never
// contain key material or entry values.
package audit
