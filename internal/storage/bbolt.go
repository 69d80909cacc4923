package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/vlt/internal/security"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket    = []byte("config")    // Format version and timestamps - unencrypted
	ArtifactsBucket = []byte("artifacts") // Key files and sealed vault payloads
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
)

const (
	boltVersion     = "1"
	boltLockTimeout = 2 * time.Second // Wait for another process holding the database lock
)

// BoltBackend stores all artifacts in one BBolt database
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database file inside dir
func OpenBolt(dir, file string) (*BoltBackend, error) {
	if err := security.ValidateName(file); err != nil {
		return nil, fmt.Errorf("invalid database name: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, file), FilePermSecure, &bolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	b := &BoltBackend{db: db}
	if err := b.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return b, nil
}

// initialize creates the bucket structure on first use
func (b *BoltBackend) initialize() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, ArtifactsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if v := config.Get(ConfigVersion); v != nil {
			if string(v) != boltVersion {
				return fmt.Errorf("unsupported database version %s", v)
			}
			return nil
		}

		if err := config.Put(ConfigVersion, []byte(boltVersion)); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// touch updates the last modified timestamp inside tx
func touch(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

func (b *BoltBackend) Read(name string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(ArtifactsBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (b *BoltBackend) Write(name string, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(ArtifactsBucket).Put([]byte(name), data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return touch(tx)
	})
}

func (b *BoltBackend) Exists(name string) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(ArtifactsBucket).Get([]byte(name)) != nil
		return nil
	})
	return exists, err
}

// Remove deletes all names in one transaction: either every artifact is
// removed or none is.
func (b *BoltBackend) Remove(names ...string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		artifacts := tx.Bucket(ArtifactsBucket)
		for _, name := range names {
			if artifacts.Get([]byte(name)) == nil {
				return &RemoveError{Failed: name, Err: fmt.Errorf("%w: %s", ErrNotFound, name)}
			}
			if err := artifacts.Delete([]byte(name)); err != nil {
				return &RemoveError{Failed: name, Err: err}
			}
		}
		return touch(tx)
	})
}

func (b *BoltBackend) List() ([]string, error) {
	var names []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ArtifactsBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Modified returns the time of the last write or removal
func (b *BoltBackend) Modified() (time.Time, error) {
	var modified time.Time
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(ConfigBucket).Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// Path returns the database file path
func (b *BoltBackend) Path() string {
	return b.db.Path()
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting vaults to reclaim disk space.
func (b *BoltBackend) Compact() error {
	srcPath := b.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, FilePermSecure, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = b.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := b.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	b.db, err = bolt.Open(srcPath, FilePermSecure, &bolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
