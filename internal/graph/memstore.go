package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	folders  map[string]FolderNode
	files    map[string]FileNode
	symbols  map[string]SymbolNode // key: "filePath:name"
	edges    []Edge
	clusters []ClusterNode
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		folders: make(map[string]FolderNode),
		files:   make(map[string]FileNode),
		symbols: make(map[string]SymbolNode),
	}
}

// symbolKey builds the composite lookup key for a symbol.
func symbolKey(filePath, name string) string {
	return filePath + ":" + name
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

func (m *MemStore) AddFolder(_ context.Context, node FolderNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[node.Path] = node
	return nil
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddSymbol stores a symbol node keyed by "filePath:name".
func (m *MemStore) AddSymbol(_ context.Context, node SymbolNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[symbolKey(node.FilePath, node.Name)] = node
	return nil
}

func (m *MemStore) AddCluster(_ context.Context, node ClusterNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, node)
	return nil
}

// AddEdge appends an edge. Duplicate edges are kept, matching a graph
// database without uniqueness constraints on relationships.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for the given path.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: file %q", ErrNotFound, path)
	}
	return &f, nil
}

// GetSymbol returns the symbol for the given file path and name.
func (m *MemStore) GetSymbol(_ context.Context, filePath, name string) (*SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.symbols[symbolKey(filePath, name)]
	if !ok {
		return nil, fmt.Errorf("%w: symbol %q in %q", ErrNotFound, name, filePath)
	}
	return &s, nil
}

// QuerySymbols returns symbols whose name contains query (case-insensitive),
// ordered by file path then name, up to limit results. A limit <= 0 returns
// all matches.
func (m *MemStore) QuerySymbols(_ context.Context, query string, limit int) ([]SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []SymbolNode
	for _, sym := range m.symbols {
		if strings.Contains(strings.ToLower(sym.Name), lowerQuery) {
			results = append(results, sym)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].FilePath != results[j].FilePath {
			return results[i].FilePath < results[j].FilePath
		}
		return results[i].Name < results[j].Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetDependencies follows IMPORTS edges from nodeID in the given direction,
// up to maxDepth hops.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return dependencyChains(nodeID, direction, maxDepth, m.neighbors)
}

// neighbors returns the files one IMPORTS hop from id, sorted. Callers hold
// m.mu.
func (m *MemStore) neighbors(id string, direction Direction) ([]string, error) {
	seen := make(map[string]bool)
	for _, e := range m.edges {
		if e.Kind != EdgeKindImports {
			continue
		}
		switch direction {
		case DirectionUpstream:
			// id imports TargetID.
			if e.SourceID == id {
				seen[e.TargetID] = true
			}
		case DirectionDownstream:
			// SourceID imports id.
			if e.TargetID == id {
				seen[e.SourceID] = true
			}
		}
	}
	return setToSlice(seen), nil
}

// AssessImpact reports the files that import any of changedFiles, directly
// or transitively.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return assessImpact(changedFiles, len(m.files), m.neighbors)
}

// GetClusters returns all stored clusters.
func (m *MemStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ClusterNode, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Files returns all file nodes ordered by path.
func (m *MemStore) Files() []FileNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileNode, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Stats returns counts of all node and edge types in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FolderCount:  len(m.folders),
		FileCount:    len(m.files),
		SymbolCount:  len(m.symbols),
		ClusterCount: len(m.clusters),
		EdgeCount:    len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
