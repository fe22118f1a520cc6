// Package importcache persists extracted import lists across runs in a
// bbolt database, so unchanged sources are not rescanned.
package importcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dusk-indust/xcgraph/internal/imports"
)

var bucketImports = []byte("imports")

// entry is the stored JSON value for one file version.
type entry struct {
	Imports []string `json:"imports"`
}

// BoltCache implements imports.Cache on a bbolt file. Keys are
// imports.CacheKey values, so a changed file misses and is re-extracted.
type BoltCache struct {
	db  *bolt.DB
	log *slog.Logger
}

var _ imports.Cache = (*BoltCache)(nil)

// Open opens (or creates) the cache database at path.
func Open(path string, log *slog.Logger) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketImports)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &BoltCache{db: db, log: log}, nil
}

// Close closes the database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// Get returns the stored imports for key. Read or decode failures count as
// misses.
func (c *BoltCache) Get(key string) ([]string, bool) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		// bbolt slices are only valid within tx.
		if v := tx.Bucket(bucketImports).Get([]byte(key)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn("importcache: dropping corrupt entry", "key", key, "err", err)
		return nil, false
	}
	return e.Imports, true
}

// Add stores imports under key. A write failure is logged; the cache is
// advisory.
func (c *BoltCache) Add(key string, names []string) {
	data, err := json.Marshal(entry{Imports: names})
	if err != nil {
		c.log.Warn("importcache: marshal entry", "key", key, "err", err)
		return
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImports).Put([]byte(key), data)
	})
	if err != nil {
		c.log.Warn("importcache: write entry", "key", key, "err", err)
	}
}

// Len returns the number of stored entries.
func (c *BoltCache) Len() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketImports).Stats().KeyN
		return nil
	})
	return n
}

// Layered checks Front before Back and fills Front on a Back hit. Adds go
// to both.
type Layered struct {
	Front imports.Cache
	Back  imports.Cache
}

var _ imports.Cache = Layered{}

func (l Layered) Get(key string) ([]string, bool) {
	if names, ok := l.Front.Get(key); ok {
		return names, true
	}
	names, ok := l.Back.Get(key)
	if ok {
		l.Front.Add(key, names)
	}
	return names, ok
}

func (l Layered) Add(key string, names []string) {
	l.Front.Add(key, names)
	l.Back.Add(key, names)
}
