package mcptools

import (
	"github.com/dusk-indust/xcgraph/internal/graph"
	"github.com/dusk-indust/xcgraph/internal/project"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ParseProjectInput is the input for the parse_project MCP tool.
type ParseProjectInput struct{}

// ParseProjectOutput is the result of the parse_project MCP tool.
type ParseProjectOutput struct {
	Summary project.Summary  `json:"summary"`
	Stats   graph.GraphStats `json:"stats"`
}

// ProjectTreeInput is the input for the project_tree MCP tool.
type ProjectTreeInput struct {
	Depth int `json:"depth,omitempty" jsonschema:"number of folder levels to expand (default: all)"`
}

// ProjectTreeOutput is the result of the project_tree MCP tool.
type ProjectTreeOutput struct {
	Tree string `json:"tree"`
}

// ImportClosureInput is the input for the import_closure MCP tool.
type ImportClosureInput struct {
	File string `json:"file" jsonschema:"file name to start from, e.g. AppDelegate.h"`
}

// ImportClosureOutput is the result of the import_closure MCP tool.
type ImportClosureOutput struct {
	Files   []string    `json:"files"`
	Imports [][2]string `json:"imports"`
}

// QuerySymbolsInput is the input for the query_symbols MCP tool.
type QuerySymbolsInput struct {
	Query string `json:"query" jsonschema:"search query for symbol names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by symbol kind: function, struct, enum, typedef, variable"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySymbolsOutput is the result of the query_symbols MCP tool.
type QuerySymbolsOutput struct {
	Symbols []graph.SymbolNode `json:"symbols"`
	Total   int                `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"project path of a file, e.g. App/Models/User.h"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it imports) or downstream (what imports it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"project paths of the files that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.ClusterNode `json:"clusters"`
}
