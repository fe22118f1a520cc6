// Package project ties the descriptor parser, hierarchy resolver and import
// walker together for one Xcode project on disk.
package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dusk-indust/xcgraph/internal/config"
	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/graph"
	"github.com/dusk-indust/xcgraph/internal/importcache"
	"github.com/dusk-indust/xcgraph/internal/imports"
	"github.com/dusk-indust/xcgraph/internal/pbx"
)

// Summary counts what an analysis found.
type Summary struct {
	BuildFiles     int `json:"buildFiles"`
	Groups         int `json:"groups"`
	Folders        int `json:"folders"`
	Files          int `json:"files"`
	NativeSources  int `json:"nativeSources"`
	ManagedSources int `json:"managedSources"`
	IndexedFiles   int `json:"indexedFiles"`
}

// Analysis is the result of one pass over the project.
type Analysis struct {
	Records *pbx.Records
	Root    *pbx.Folder
	FS      fs.FS
	Index   imports.Index
	Summary Summary
}

// Service analyzes the project described by its config. It is safe for
// concurrent use; Analyze replaces the source index used by Closure.
type Service struct {
	cfg   config.ProjectConfig
	fsys  fs.FS
	cache imports.Cache
	bolt  *importcache.BoltCache

	mu    sync.Mutex
	index imports.Index
}

// New creates a Service. cfg is used as given; callers normally pass it
// through ProjectConfig.WithDefaults first. When cfg.CachePath is set the
// in-memory import cache is backed by a bbolt database at that path.
func New(ctx context.Context, cfg config.ProjectConfig) (*Service, error) {
	s := &Service{cfg: cfg, fsys: os.DirFS(cfg.SourceRoot)}

	size := cfg.CacheSize
	if size <= 0 {
		size = config.DefaultCacheSize
	}
	lru, err := imports.NewLRUCache(size)
	if err != nil {
		return nil, err
	}
	s.cache = lru

	if cfg.CachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		db, err := importcache.Open(cfg.CachePath, ctxlog.FromContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("open import cache: %w", err)
		}
		s.bolt = db
		s.cache = importcache.Layered{Front: lru, Back: db}
	}
	return s, nil
}

// Config returns the configuration the service was created with.
func (s *Service) Config() config.ProjectConfig {
	return s.cfg
}

// Close releases the persistent import cache, if any.
func (s *Service) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Analyze parses the descriptor, resolves the configured root folder and
// indexes the source root.
func (s *Service) Analyze(ctx context.Context) (*Analysis, error) {
	log := ctxlog.FromContext(ctx)

	records, err := pbx.ParseFile(ctx, s.cfg.Descriptor)
	if err != nil {
		return nil, err
	}
	root, err := pbx.Resolve(ctx, records, s.cfg.RootFolder)
	if err != nil {
		return nil, err
	}
	idx, err := s.rebuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Records: records,
		Root:    root,
		FS:      s.fsys,
		Index:   idx,
		Summary: summarize(records, root, idx),
	}
	log.Info("project: analyzed",
		"descriptor", s.cfg.Descriptor,
		"root", s.cfg.RootFolder,
		"files", a.Summary.Files,
		"folders", a.Summary.Folders,
	)
	return a, nil
}

// Closure returns the import closure of start. The source index from the
// last Analyze is reused; it is built on first use otherwise.
func (s *Service) Closure(ctx context.Context, start string) (imports.Set, error) {
	return s.closure(ctx, start, nil)
}

// ClosureEdges is Closure that also returns every (from, to) import pair
// seen while walking, sorted.
func (s *Service) ClosureEdges(ctx context.Context, start string) (imports.Set, [][2]string, error) {
	var edges [][2]string
	set, err := s.closure(ctx, start, func(from, to string) {
		edges = append(edges, [2]string{from, to})
	})
	sortPairs(edges)
	return set, edges, err
}

func (s *Service) closure(ctx context.Context, start string, onImport func(from, to string)) (imports.Set, error) {
	idx, err := s.currentIndex(ctx)
	if err != nil {
		return nil, err
	}
	w := imports.Walker{FS: s.fsys, Index: idx, Cache: s.cache, OnImport: onImport}
	if s.cfg.Parallelism > 1 {
		pw := &imports.ParallelWalker{Walker: w, Limit: s.cfg.Parallelism}
		return pw.Closure(ctx, start)
	}
	return w.Closure(ctx, start)
}

// LoadGraph writes a into store with symbols from the tree-sitter parser.
func (s *Service) LoadGraph(ctx context.Context, store graph.Store, a *Analysis) (*graph.LoadResult, error) {
	if err := store.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	parser := graph.NewTreeSitterParser()
	defer parser.Close()

	return graph.Load(ctx, store, graph.LoadInput{
		Root:   a.Root,
		FS:     a.FS,
		Index:  a.Index,
		Parser: parser,
	})
}

func (s *Service) rebuildIndex(ctx context.Context) (imports.Index, error) {
	excludes := s.cfg.ExcludeDirs
	if excludes == nil {
		excludes = imports.DefaultExcludeDirs
	}
	idx, err := imports.BuildIndex(ctx, s.fsys, excludes)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return idx, nil
}

func (s *Service) currentIndex(ctx context.Context) (imports.Index, error) {
	s.mu.Lock()
	idx := s.index
	s.mu.Unlock()
	if idx != nil {
		return idx, nil
	}
	return s.rebuildIndex(ctx)
}

func summarize(records *pbx.Records, root *pbx.Folder, idx imports.Index) Summary {
	sum := Summary{
		BuildFiles:   len(records.BuildFiles),
		Groups:       len(records.Groups),
		Folders:      root.CountFolders(),
		Files:        root.CountFiles(),
		IndexedFiles: len(idx),
	}
	for _, bf := range records.BuildFiles {
		switch bf.Kind {
		case pbx.KindNativeSource:
			sum.NativeSources++
		case pbx.KindManagedSource:
			sum.ManagedSources++
		}
	}
	return sum
}

func sortPairs(pairs [][2]string) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
