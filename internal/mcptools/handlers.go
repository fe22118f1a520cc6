package mcptools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/xcgraph/internal/export"
	"github.com/dusk-indust/xcgraph/internal/graph"
	"github.com/dusk-indust/xcgraph/internal/project"
)

// CodeIntelService holds the project service and the graph built from its
// last analysis. Graph tools build the graph on first use.
type CodeIntelService struct {
	project  *project.Service
	newStore func() graph.Store

	mu       sync.Mutex
	store    graph.Store
	analysis *project.Analysis
}

// NewCodeIntelService creates a CodeIntelService. newStore is called for
// every parse_project run; nil means graph.NewMemStore.
func NewCodeIntelService(svc *project.Service, newStore func() graph.Store) *CodeIntelService {
	if newStore == nil {
		newStore = func() graph.Store { return graph.NewMemStore() }
	}
	return &CodeIntelService{project: svc, newStore: newStore}
}

// Close releases the current graph store.
func (s *CodeIntelService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ParseProject re-analyzes the project and rebuilds the graph.
func (s *CodeIntelService) ParseProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ParseProjectInput,
) (*mcp.CallToolResult, ParseProjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuildLocked(ctx); err != nil {
		return nil, ParseProjectOutput{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, ParseProjectOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, ParseProjectOutput{Summary: s.analysis.Summary, Stats: *stats}, nil
}

// ProjectTree renders the resolved folder hierarchy as text.
func (s *CodeIntelService) ProjectTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectTreeInput,
) (*mcp.CallToolResult, ProjectTreeOutput, error) {
	_, a, err := s.graph(ctx)
	if err != nil {
		return nil, ProjectTreeOutput{}, err
	}
	var sb strings.Builder
	if err := export.RenderTree(&sb, a.Root, input.Depth); err != nil {
		return nil, ProjectTreeOutput{}, fmt.Errorf("render tree: %w", err)
	}
	return nil, ProjectTreeOutput{Tree: sb.String()}, nil
}

// ImportClosure returns every file reachable from a start file through
// quoted imports and header/implementation pairing.
func (s *CodeIntelService) ImportClosure(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImportClosureInput,
) (*mcp.CallToolResult, ImportClosureOutput, error) {
	if input.File == "" {
		return nil, ImportClosureOutput{}, fmt.Errorf("file is required")
	}
	set, edges, err := s.project.ClosureEdges(ctx, input.File)
	if err != nil {
		return nil, ImportClosureOutput{}, fmt.Errorf("import closure: %w", err)
	}
	if edges == nil {
		edges = [][2]string{}
	}
	return nil, ImportClosureOutput{Files: set.Sorted(), Imports: edges}, nil
}

// QuerySymbols searches for symbols by name substring match.
func (s *CodeIntelService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	store, _, err := s.graph(ctx)
	if err != nil {
		return nil, QuerySymbolsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	symbols, err := store.QuerySymbols(ctx, input.Query, limit)
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("query symbols: %w", err)
	}

	if input.Kind != "" {
		kind := graph.SymbolKind(strings.ToLower(input.Kind))
		filtered := symbols[:0]
		for _, sym := range symbols {
			if sym.Kind == kind {
				filtered = append(filtered, sym)
			}
		}
		symbols = filtered
	}
	if symbols == nil {
		symbols = []graph.SymbolNode{}
	}

	return nil, QuerySymbolsOutput{
		Symbols: symbols,
		Total:   len(symbols),
	}, nil
}

// GetDependencies traverses IMPORTS edges from a file.
func (s *CodeIntelService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}
	store, _, err := s.graph(ctx)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, "upstream") {
		direction = graph.DirectionUpstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := store.GetDependencies(ctx, input.NodeID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of modifying a set of files.
func (s *CodeIntelService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}
	store, _, err := s.graph(ctx)
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}

	impact, err := store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}

	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// GetClusters returns all file clusters in the graph.
func (s *CodeIntelService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	store, _, err := s.graph(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, err
	}

	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}
	if clusters == nil {
		clusters = []graph.ClusterNode{}
	}

	return nil, GetClustersOutput{Clusters: clusters}, nil
}

// graph returns the current store and analysis, building them if needed.
func (s *CodeIntelService) graph(ctx context.Context) (graph.Store, *project.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		if err := s.rebuildLocked(ctx); err != nil {
			return nil, nil, err
		}
	}
	return s.store, s.analysis, nil
}

func (s *CodeIntelService) rebuildLocked(ctx context.Context) error {
	a, err := s.project.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analyze project: %w", err)
	}
	store := s.newStore()
	if _, err := s.project.LoadGraph(ctx, store, a); err != nil {
		store.Close()
		return fmt.Errorf("load graph: %w", err)
	}
	if s.store != nil {
		s.store.Close()
	}
	s.store = store
	s.analysis = a
	return nil
}
