package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/vlt/internal/keyring"
	"github.com/illarion/vlt/internal/logging"
	"github.com/illarion/vlt/internal/storage"
	"github.com/illarion/vlt/internal/vault"
)

func TestKeyringSaveRestore(t *testing.T) {
	gokeyring.MockInit()
	ctx := context.Background()
	v, dir := newTestVlt(t, storage.KindFile)

	if err := v.New(ctx, "work", false); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.Add(ctx, "work", "token", "abc"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if ok, _ := v.KeyringStatus(ctx, "work"); ok {
		t.Fatal("Key reported escrowed before save")
	}
	if err := v.KeyringSave(ctx, "work"); err != nil {
		t.Fatalf("KeyringSave failed: %v", err)
	}
	if ok, _ := v.KeyringStatus(ctx, "work"); !ok {
		t.Error("Key not reported escrowed after save")
	}

	keyPath := filepath.Join(dir, "work.vlt.key")
	original, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("Failed to read key file: %v", err)
	}
	if err := os.Remove(keyPath); err != nil {
		t.Fatalf("Failed to remove key file: %v", err)
	}
	if _, err := v.Get(ctx, "work", "token"); !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("Expected not-found without key, got %v", err)
	}

	if err := v.KeyringRestore(ctx, "work"); err != nil {
		t.Fatalf("KeyringRestore failed: %v", err)
	}
	restored, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("Key file not restored: %v", err)
	}
	if string(restored) != string(original) {
		t.Error("Restored key differs from original")
	}
	if got, err := v.Get(ctx, "work", "token"); err != nil || got != "abc" {
		t.Errorf("Get after restore = %q, %v", got, err)
	}

	if err := v.KeyringDelete(ctx, "work"); err != nil {
		t.Fatalf("KeyringDelete failed: %v", err)
	}
	if err := v.KeyringDelete(ctx, "work"); !errors.Is(err, ErrNotEscrowed) {
		t.Errorf("Expected ErrNotEscrowed on second delete, got %v", err)
	}
}

func TestKeyringRestoreWithoutEscrow(t *testing.T) {
	gokeyring.MockInit()
	ctx := context.Background()
	v, _ := newTestVlt(t, storage.KindFile)

	if err := v.New(ctx, "v", false); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.KeyringRestore(ctx, "v"); !errors.Is(err, ErrNotEscrowed) {
		t.Errorf("Expected ErrNotEscrowed, got %v", err)
	}
}

func TestKeyringRestoreRejectsForeignKey(t *testing.T) {
	gokeyring.MockInit()
	ctx := context.Background()
	v, _ := newTestVlt(t, storage.KindFile)

	for _, name := range []string{"a", "b"} {
		if err := v.New(ctx, name, false); err != nil {
			t.Fatalf("New failed: %v", err)
		}
	}
	if err := v.KeyringSave(ctx, "b"); err != nil {
		t.Fatalf("KeyringSave failed: %v", err)
	}

	// Escrow b's key under a's account
	accountA, _ := v.account("a")
	accountB, _ := v.account("b")
	stored, err := gokeyring.Get("vlt", accountB)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := gokeyring.Set("vlt", accountA, stored); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := v.KeyringRestore(ctx, "a"); !errors.Is(err, vault.ErrAuthFailed) {
		t.Errorf("Expected auth failure, got %v", err)
	}
}

func TestKeyringSaveReplacesStaleEntry(t *testing.T) {
	gokeyring.MockInit()
	ctx := context.Background()
	v, dir := newTestVlt(t, storage.KindFile)
	var logs bytes.Buffer
	v.log = logging.Logger{Verbose: true, W: &logs}

	if err := v.New(ctx, "v", false); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.KeyringSave(ctx, "v"); err != nil {
		t.Fatalf("KeyringSave failed: %v", err)
	}

	// Recreating the vault leaves the old key escrowed
	if err := v.New(ctx, "v", true); err != nil {
		t.Fatalf("Forced New failed: %v", err)
	}
	logs.Reset()
	if err := v.KeyringSave(ctx, "v"); err != nil {
		t.Fatalf("KeyringSave failed: %v", err)
	}
	if !strings.Contains(logs.String(), "replacing keyring entry") {
		t.Errorf("Expected a warning about the stale entry, got %q", logs.String())
	}

	account, _ := v.account("v")
	escrowed, err := keyring.GetKey(account)
	if err != nil {
		t.Fatalf("GetKey failed: %v", err)
	}
	current, err := os.ReadFile(filepath.Join(dir, "v.vlt.key"))
	if err != nil {
		t.Fatalf("Failed to read key file: %v", err)
	}
	if !bytes.Equal(escrowed, current) {
		t.Error("Keyring entry was not replaced with the current key")
	}

	logs.Reset()
	if err := v.KeyringSave(ctx, "v"); err != nil {
		t.Fatalf("KeyringSave failed: %v", err)
	}
	if !strings.Contains(logs.String(), "already in the keyring") {
		t.Errorf("Expected an unchanged entry to be skipped, got %q", logs.String())
	}
}

func TestKeyringSaveMissingVault(t *testing.T) {
	gokeyring.MockInit()
	v, _ := newTestVlt(t, storage.KindFile)

	if err := v.KeyringSave(context.Background(), "nope"); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("Expected not-found, got %v", err)
	}
}
