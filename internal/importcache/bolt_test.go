package importcache

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/dusk-indust/xcgraph/internal/imports"
)

func newTestCache(t *testing.T) (*BoltCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imports.db")
	cache, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, path
}

func TestBoltCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok := cache.Get("A.h|10|1")
	assert.False(t, ok)

	cache.Add("A.h|10|1", []string{"B.h", "C.h"})
	got, ok := cache.Get("A.h|10|1")
	require.True(t, ok)
	assert.Equal(t, []string{"B.h", "C.h"}, got)
	assert.Equal(t, 1, cache.Len())
}

func TestBoltCache_EmptyImportListIsAHit(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Add("Leaf.h|0|1", nil)
	got, ok := cache.Get("Leaf.h|0|1")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestBoltCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imports.db")
	first, err := Open(path, nil)
	require.NoError(t, err)
	first.Add("A.m|20|5", []string{"A.h"})
	require.NoError(t, first.Close())

	second, err := Open(path, nil)
	require.NoError(t, err)
	defer second.Close()

	got, ok := second.Get("A.m|20|5")
	require.True(t, ok)
	assert.Equal(t, []string{"A.h"}, got)
}

func TestBoltCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	require.NoError(t, cache.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImports).Put([]byte("bad"), []byte("{not json"))
	}))

	_, ok := cache.Get("bad")
	assert.False(t, ok)
}

func TestLayered_FillsFrontFromBack(t *testing.T) {
	back, _ := newTestCache(t)
	front, err := imports.NewLRUCache(8)
	require.NoError(t, err)
	back.Add("k", []string{"X.h"})

	l := Layered{Front: front, Back: back}
	got, ok := l.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"X.h"}, got)

	fromFront, ok := front.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"X.h"}, fromFront)

	l.Add("j", []string{"Y.h"})
	_, ok = back.Get("j")
	assert.True(t, ok)
}

func TestBoltCache_BacksWalker(t *testing.T) {
	cache, _ := newTestCache(t)
	mod := time.Unix(1700000000, 0)
	fsys := fstest.MapFS{
		"A.h": {Data: []byte("#import \"B.h\"\n"), ModTime: mod},
		"B.h": {Data: []byte(""), ModTime: mod},
	}
	idx, err := imports.BuildIndex(context.Background(), fsys, nil)
	require.NoError(t, err)

	w := &imports.Walker{FS: fsys, Index: idx, Cache: cache}
	got, err := w.Closure(context.Background(), "A.h")
	require.NoError(t, err)
	assert.Equal(t, []string{"A.h", "A.m", "B.h", "B.m"}, got.Sorted())
	assert.Equal(t, 2, cache.Len())

	info, err := fs.Stat(fsys, "A.h")
	require.NoError(t, err)
	cached, ok := cache.Get(imports.CacheKey("A.h", info))
	require.True(t, ok)
	assert.Equal(t, []string{"B.h"}, cached)
}
