package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/vlt/internal/audit"
	"github.com/illarion/vlt/internal/logging"
	"github.com/illarion/vlt/internal/storage"
	"github.com/illarion/vlt/internal/vault"
)

var ErrCompactUnsupported = errors.New("backend does not support compaction")

// Options configures Open
type Options struct {
	Root     string // Storage root directory
	Backend  string // storage.KindFile or storage.KindBolt
	BoltFile string // Database name for the bolt backend

	Audit  *audit.Log // Nil disables auditing
	Logger logging.Logger
}

// Vlt runs commands against one storage root
type Vlt struct {
	root    string
	backend storage.Backend
	store   *vault.Store
	audit   *audit.Log
	log     logging.Logger
}

// Open opens the backend described by opts
func Open(opts Options) (*Vlt, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	backend, err := storage.Open(storage.Options{
		Kind:     opts.Backend,
		Root:     root,
		BoltFile: opts.BoltFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	opts.Logger.Debugf("opened %s backend at %s", backendName(opts.Backend), root)

	return newVlt(root, backend, opts.Audit, opts.Logger), nil
}

func newVlt(root string, backend storage.Backend, log *audit.Log, logger logging.Logger) *Vlt {
	return &Vlt{
		root:    root,
		backend: backend,
		store:   vault.NewStore(backend),
		audit:   log,
		log:     logger,
	}
}

func backendName(kind string) string {
	if kind == "" {
		return storage.KindFile
	}
	return kind
}

// Close releases the backend
func (v *Vlt) Close() error {
	return v.backend.Close()
}

// Root returns the absolute storage root
func (v *Vlt) Root() string {
	return v.root
}

// record appends an audit event. Audit failures are logged, never returned.
func (v *Vlt) record(ev audit.Event, err error) {
	ev.Success = err == nil
	if err != nil {
		ev.Error = err.Error()
	}
	if aerr := v.audit.Record(ev); aerr != nil {
		v.log.Warnf("audit log: %v", aerr)
	}
}

// New creates an empty vault
func (v *Vlt) New(ctx context.Context, name string, force bool) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() { v.record(audit.Event{Operation: "new", Vault: name}, err) }()

	if _, err := v.store.Create(name, vault.CreateOptions{Force: force}); err != nil {
		return err
	}
	v.log.Infof("created vault %s", name)
	return nil
}

// List returns the names of all vaults
func (v *Vlt) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.store.List()
}

// ListKeys returns the sorted entry keys of a vault
func (v *Vlt) ListKeys(ctx context.Context, name string) ([]string, error) {
	vt, err := v.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return vt.Keys(), nil
}

// Dump returns the whole decrypted vault
func (v *Vlt) Dump(ctx context.Context, name string) (*vault.Vault, error) {
	return v.load(ctx, name)
}

// Add upserts an entry and persists the vault
func (v *Vlt) Add(ctx context.Context, name, key, value string) (err error) {
	defer func() { v.record(audit.Event{Operation: "add", Vault: name, Key: key}, err) }()

	vt, err := v.load(ctx, name)
	if err != nil {
		return err
	}

	vt.AddEntry(vault.Entry{Key: key, Value: value})
	if err := v.persist(ctx, vt); err != nil {
		return err
	}
	v.log.Infof("stored %s in %s", key, name)
	return nil
}

// Get returns the value for key. An absent key is vault.ErrNoSuchKey and the
// vault is not written.
func (v *Vlt) Get(ctx context.Context, name, key string) (string, error) {
	vt, err := v.load(ctx, name)
	if err != nil {
		return "", err
	}
	val, ok := vt.Get(key)
	if !ok {
		return "", vault.ErrNoSuchKey
	}
	return val, nil
}

// DeleteKey removes an entry. An absent key is vault.ErrUnknownKey and the
// vault is left untouched.
func (v *Vlt) DeleteKey(ctx context.Context, name, key string) (err error) {
	defer func() { v.record(audit.Event{Operation: "delete-key", Vault: name, Key: key}, err) }()

	vt, err := v.load(ctx, name)
	if err != nil {
		return err
	}
	if !vt.Remove(key) {
		return vault.ErrUnknownKey
	}
	if err := v.persist(ctx, vt); err != nil {
		return err
	}
	v.log.Infof("removed %s from %s", key, name)
	return nil
}

// DeleteVault removes both artifacts of a vault
func (v *Vlt) DeleteVault(ctx context.Context, name string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() { v.record(audit.Event{Operation: "delete-vault", Vault: name}, err) }()

	if err := v.store.Delete(name); err != nil {
		return err
	}
	v.log.Infof("deleted vault %s", name)
	return nil
}

// Exists reports whether a vault is present
func (v *Vlt) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return v.store.Exists(name)
}

// CompactResult reports database sizes around a compaction
type CompactResult struct {
	Path   string
	Before int64
	After  int64
}

// Compact reclaims unused space. Only the bolt backend supports it.
func (v *Vlt) Compact(ctx context.Context) (res *CompactResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bb, ok := v.backend.(*storage.BoltBackend)
	if !ok {
		return nil, ErrCompactUnsupported
	}
	defer func() { v.record(audit.Event{Operation: "compact"}, err) }()

	res = &CompactResult{Path: bb.Path()}
	if res.Before, err = fileSize(res.Path); err != nil {
		return nil, err
	}
	if err := bb.Compact(); err != nil {
		return nil, err
	}
	if res.After, err = fileSize(res.Path); err != nil {
		return nil, err
	}
	v.log.Debugf("compacted %s: %d -> %d bytes", res.Path, res.Before, res.After)
	return res, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat database: %w", err)
	}
	return info.Size(), nil
}

func (v *Vlt) load(ctx context.Context, name string) (*vault.Vault, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.log.Debugf("loading vault %s", name)
	return v.store.Load(name)
}

func (v *Vlt) persist(ctx context.Context, vt *vault.Vault) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.log.Debugf("persisting vault %s (%d entries)", vt.Name, vt.Len())
	return v.store.Persist(vt)
}
