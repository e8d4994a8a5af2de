// Package cache persists rendered formulas in a bbolt file so repeated
// uploads of the same sheet skip the renderer.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgallion1/studyhub/internal/render"
	bolt "go.etcd.io/bbolt"
)

const bucketRenders = "renders"

// Rendered is the cached output for one (symbol table, formula, size,
// colour) key.
type Rendered struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
}

// Cache is a render cache. A nil *Cache is valid and never hits.
type Cache struct {
	db     *bolt.DB
	hits   atomic.Int64
	misses atomic.Int64
}

// Open opens or creates the cache file at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open render cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRenders))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init render cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying file.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives the storage key for a formula rendered with opts. table is
// the digest of the symbol table used to parse it.
func Key(table, formula string, opts render.Options) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", table, opts.Size, render.SafeColor(opts.Color), formula)
	return h.Sum(nil)
}

// Get looks up a cached render.
func (c *Cache) Get(table, formula string, opts render.Options) (Rendered, bool, error) {
	var out Rendered
	if c == nil {
		return out, false, nil
	}
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketRenders)).Get(Key(table, formula, opts))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return Rendered{}, false, fmt.Errorf("read render cache: %w", err)
	}
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return out, found, nil
}

// Put stores a render.
func (c *Cache) Put(table, formula string, opts render.Options, r Rendered) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRenders)).Put(Key(table, formula, opts), data)
	})
	if err != nil {
		return fmt.Errorf("write render cache: %w", err)
	}
	return nil
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	var n int
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketRenders)).Stats().KeyN
		return nil
	})
	return n
}

// Stats reports lookups served from and missed by the cache.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
