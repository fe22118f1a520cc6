package graph

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by lookups for nodes that are not in the store.
var ErrNotFound = errors.New("graph: not found")

// Store is the interface for the project graph backend.
// Implementations: KuzuStore (cgo builds), MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddFolder(ctx context.Context, node FolderNode) error
	AddFile(ctx context.Context, node FileNode) error
	AddSymbol(ctx context.Context, node SymbolNode) error
	AddCluster(ctx context.Context, node ClusterNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	GetSymbol(ctx context.Context, filePath, name string) (*SymbolNode, error)
	QuerySymbols(ctx context.Context, query string, limit int) ([]SymbolNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal over IMPORTS edges.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)
	GetClusters(ctx context.Context) ([]ClusterNode, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this import?
	DirectionDownstream Direction = "downstream" // what imports this?
)
