package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/vlt/internal/audit"
	"github.com/illarion/vlt/internal/crypto"
	"github.com/illarion/vlt/internal/keyring"
	"github.com/illarion/vlt/internal/vault"
)

var ErrNotEscrowed = errors.New("no key stored in keyring")

func (v *Vlt) account(name string) (string, error) {
	if err := vault.ValidateName(name); err != nil {
		return "", err
	}
	return keyring.Account(v.root, name)
}

// KeyringSave copies a vault's key into the OS keyring after checking that
// the key opens the vault.
func (v *Vlt) KeyringSave(ctx context.Context, name string) (err error) {
	defer func() { v.record(audit.Event{Operation: "keyring-save", Vault: name}, err) }()

	if _, err := v.load(ctx, name); err != nil {
		return err
	}
	key, err := v.store.LoadKey(name)
	if err != nil {
		return err
	}
	defer key.Destroy()

	account, err := v.account(name)
	if err != nil {
		return err
	}
	if same, found := v.escrowedMatches(account, key); same {
		v.log.Infof("key for %s is already in the keyring", name)
		return nil
	} else if found {
		v.log.Warnf("replacing keyring entry for %s, it does not match the key file", name)
	}
	if err := keyring.SaveKey(account, key.Bytes()); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	v.log.Debugf("saved key for %s under %s", name, account)
	return nil
}

// escrowedMatches reports whether the keyring holds key for account, and
// whether it holds anything at all.
func (v *Vlt) escrowedMatches(account string, key *crypto.SecretKey) (same, found bool) {
	raw, err := keyring.GetKey(account)
	if err != nil {
		return false, !keyring.IsNotFound(err)
	}
	escrowed, err := crypto.NewSecretKey(raw)
	if err != nil {
		return false, true
	}
	defer escrowed.Destroy()
	return escrowed.Equal(key), true
}

// KeyringRestore rewrites a vault's key file from the keyring. The escrowed
// key must open the existing payload.
func (v *Vlt) KeyringRestore(ctx context.Context, name string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() { v.record(audit.Event{Operation: "keyring-restore", Vault: name}, err) }()

	account, err := v.account(name)
	if err != nil {
		return err
	}
	raw, err := keyring.GetKey(account)
	if err != nil {
		if keyring.IsNotFound(err) {
			return ErrNotEscrowed
		}
		return fmt.Errorf("failed to read keyring: %w", err)
	}

	key, err := crypto.NewSecretKey(raw)
	if err != nil {
		return fmt.Errorf("keyring entry for %s: %w", name, err)
	}
	defer key.Destroy()

	if err := v.store.RestoreKey(name, key); err != nil {
		return err
	}
	v.log.Infof("restored key for %s from keyring", name)
	return nil
}

// KeyringDelete removes the escrowed key
func (v *Vlt) KeyringDelete(ctx context.Context, name string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() { v.record(audit.Event{Operation: "keyring-delete", Vault: name}, err) }()

	account, err := v.account(name)
	if err != nil {
		return err
	}
	if err := keyring.DeleteKey(account); err != nil {
		if keyring.IsNotFound(err) {
			return ErrNotEscrowed
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// KeyringStatus reports whether a key is escrowed for the vault
func (v *Vlt) KeyringStatus(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	account, err := v.account(name)
	if err != nil {
		return false, err
	}
	return keyring.HasKey(account), nil
}
