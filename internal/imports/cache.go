package imports

import (
	"fmt"
	"io/fs"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores the extracted import names of a file version. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(key string) ([]string, bool)
	Add(key string, imports []string)
}

// CacheKey identifies one version of the file at p. An edit that changes
// the size or modification time yields a new key.
func CacheKey(p string, info fs.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", p, info.Size(), info.ModTime().UnixNano())
}

// LRUCache is an in-process Cache bounded by entry count.
type LRUCache struct {
	entries *lru.Cache[string, []string]
}

var _ Cache = (*LRUCache)(nil)

// NewLRUCache returns a cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("new import cache: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(key string) ([]string, bool) {
	return c.entries.Get(key)
}

func (c *LRUCache) Add(key string, imports []string) {
	c.entries.Add(key, imports)
}

// Len returns the number of cached entries.
func (c *LRUCache) Len() int {
	return c.entries.Len()
}
