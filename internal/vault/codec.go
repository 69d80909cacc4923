package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/illarion/vlt/internal/crypto"
)

// wireVault is the decoding shape; pointers detect missing fields
type wireVault struct {
	Name    *string            `json:"name"`
	Entries *map[string]string `json:"entries"`
}

// Seal encodes v as canonical JSON and encrypts it under key
func Seal(key *crypto.SecretKey, v *Vault) ([]byte, error) {
	out := Vault{Name: v.Name, Entries: v.Entries}
	if out.Entries == nil {
		out.Entries = map[string]string{}
	}

	plaintext, err := json.Marshal(out)
	if err != nil {
		return nil, newError(KindDecode, "failed to encode vault", err)
	}
	defer crypto.ClearBytes(plaintext)

	sealed, err := crypto.Seal(key, plaintext)
	if err != nil {
		return nil, cryptoError("failed to seal vault", err)
	}
	return sealed, nil
}

// Open authenticates and decrypts data under key and decodes the vault.
// No vault is returned unless authentication succeeds.
func Open(key *crypto.SecretKey, data []byte) (*Vault, error) {
	plaintext, err := crypto.Open(key, data)
	if err != nil {
		return nil, cryptoError("failed to open vault", err)
	}
	defer crypto.ClearBytes(plaintext)

	if !utf8.Valid(plaintext) {
		return nil, newError(KindDecode, "failed to decode vault", errors.New("payload is not valid UTF-8"))
	}

	var w wireVault
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	if err := dec.Decode(&w); err != nil {
		return nil, newError(KindDecode, "failed to decode vault", err)
	}
	if dec.More() {
		return nil, newError(KindDecode, "failed to decode vault", errors.New("trailing data after vault"))
	}
	if w.Name == nil {
		return nil, newError(KindDecode, "failed to decode vault", errors.New(`missing field "name"`))
	}
	if w.Entries == nil || *w.Entries == nil {
		return nil, newError(KindDecode, "failed to decode vault", errors.New(`missing field "entries"`))
	}

	return &Vault{Name: *w.Name, Entries: *w.Entries}, nil
}
