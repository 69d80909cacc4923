package vault

import (
	"maps"
	"slices"
)

// Entry is a single key/value pair to add to a vault
type Entry struct {
	Key   string
	Value string
}

// Vault is a named table of string entries. Keys are unique.
type Vault struct {
	Name    string            `json:"name"`
	Entries map[string]string `json:"entries"`
}

// New returns an empty vault
func New(name string) *Vault {
	return &Vault{
		Name:    name,
		Entries: make(map[string]string),
	}
}

// AddEntry inserts the entry, overwriting any existing value for its key
func (v *Vault) AddEntry(e Entry) {
	if v.Entries == nil {
		v.Entries = make(map[string]string)
	}
	v.Entries[e.Key] = e.Value
}

// Set is AddEntry for a bare key and value
func (v *Vault) Set(key, value string) {
	v.AddEntry(Entry{Key: key, Value: value})
}

// Get looks up a value
func (v *Vault) Get(key string) (string, bool) {
	val, ok := v.Entries[key]
	return val, ok
}

// Remove deletes an entry and reports whether it was present
func (v *Vault) Remove(key string) bool {
	if _, ok := v.Entries[key]; !ok {
		return false
	}
	delete(v.Entries, key)
	return true
}

// Keys returns all entry keys in sorted order
func (v *Vault) Keys() []string {
	return slices.Sorted(maps.Keys(v.Entries))
}

// Len returns the number of entries
func (v *Vault) Len() int {
	return len(v.Entries)
}

// Equal reports whether both vaults have the same name and entries
func (v *Vault) Equal(other *Vault) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Name == other.Name && maps.Equal(v.Entries, other.Entries)
}
