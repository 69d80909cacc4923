package core

import (
	"context"
	"time"

	"github.com/illarion/vlt/internal/git"
	"github.com/illarion/vlt/internal/storage"
	"github.com/illarion/vlt/internal/vault"
)

// StatusInfo describes a vault root without opening any vault
type StatusInfo struct {
	Root     string
	Backend  string
	Vaults   []string
	Modified time.Time   // Last write, bolt backend only
	Git      *git.Status // Key file exposure, file backend only
}

// Status reports what the root holds. It needs no key material.
func (v *Vlt) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := v.store.List()
	if err != nil {
		return nil, err
	}
	info := &StatusInfo{Root: v.root, Vaults: names}

	switch b := v.backend.(type) {
	case *storage.BoltBackend:
		info.Backend = storage.KindBolt
		if info.Modified, err = b.Modified(); err != nil {
			v.log.Debugf("no modification time: %v", err)
		}
	case *storage.FileBackend:
		info.Backend = storage.KindFile
		keyFiles := make([]string, 0, len(names))
		for _, name := range names {
			keyFiles = append(keyFiles, vault.KeyFileName(name))
		}
		info.Git = git.CheckKeyFiles(b.Dir(), keyFiles)
	default:
		info.Backend = "memory"
	}
	return info, nil
}
