//go:build cgo

package mcptools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/xcgraph/internal/config"
	"github.com/dusk-indust/xcgraph/internal/graph"
	"github.com/dusk-indust/xcgraph/internal/project"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixtureAbsPath returns the absolute path to the xcode_project test
// fixture. Tests run from internal/mcptools/.
func fixtureAbsPath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/xcode_project")
	require.NoError(t, err)
	return abs
}

func newTestService(t *testing.T, cfg config.ProjectConfig) *CodeIntelService {
	t.Helper()
	cfg, err := cfg.WithDefaults(fixtureAbsPath(t))
	require.NoError(t, err)

	proj, err := project.New(context.Background(), cfg)
	require.NoError(t, err)

	svc := NewCodeIntelService(proj, nil)
	t.Cleanup(func() {
		_ = svc.Close()
		_ = proj.Close()
	})
	return svc
}

func lastNodes(chains []graph.DependencyChain) []string {
	out := make([]string, len(chains))
	for i, c := range chains {
		out[i] = c.Nodes[len(c.Nodes)-1]
	}
	return out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestParseProject(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})

	_, out, err := svc.ParseProject(context.Background(), nil, ParseProjectInput{})
	require.NoError(t, err)

	assert.Equal(t, 10, out.Summary.Files)
	assert.Equal(t, 4, out.Summary.Folders)
	assert.Equal(t, 10, out.Stats.FileCount)
	assert.Equal(t, 4, out.Stats.FolderCount)
	assert.Equal(t, 1, out.Stats.ClusterCount)
	assert.Positive(t, out.Stats.SymbolCount)
}

func TestParseProject_UnknownRoot(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{RootFolder: "Classes"})

	_, _, err := svc.ParseProject(context.Background(), nil, ParseProjectInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze project")

	// Graph tools surface the same failure instead of querying a nil store.
	_, _, err = svc.GetClusters(context.Background(), nil, GetClustersInput{})
	assert.Error(t, err)
}

func TestProjectTree(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})

	_, out, err := svc.ProjectTree(context.Background(), nil, ProjectTreeInput{Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, `App/
├── Models/
├── Networking/
├── Supporting Files/
├── AppDelegate.h
├── AppDelegate.m
├── ViewController.h
├── ViewController.m
└── main.m
`, out.Tree)
}

func TestImportClosure(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})
	ctx := context.Background()

	t.Run("from header", func(t *testing.T) {
		_, out, err := svc.ImportClosure(ctx, nil, ImportClosureInput{File: "AppDelegate.h"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"APIClient.h", "APIClient.m",
			"AppDelegate.h", "AppDelegate.m",
			"User.h", "User.m",
			"ViewController.h", "ViewController.m",
		}, out.Files)
		assert.Contains(t, out.Imports, [2]string{"AppDelegate.m", "ViewController.h"})
	})

	t.Run("unrecognized start", func(t *testing.T) {
		_, out, err := svc.ImportClosure(ctx, nil, ImportClosureInput{File: "Session.swift"})
		require.NoError(t, err)
		assert.Empty(t, out.Files)
		assert.NotNil(t, out.Imports)
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := svc.ImportClosure(ctx, nil, ImportClosureInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file is required")
	})
}

func TestQuerySymbols(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})
	ctx := context.Background()

	t.Run("kind filter", func(t *testing.T) {
		_, out, err := svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "UserRecord", Kind: "FUNCTION"})
		require.NoError(t, err)
		require.NotZero(t, out.Total)
		var files []string
		for _, sym := range out.Symbols {
			assert.Equal(t, "UserRecordCompare", sym.Name)
			files = append(files, sym.FilePath)
		}
		assert.Contains(t, files, "App/Models/User.h")
	})

	t.Run("no match", func(t *testing.T) {
		_, out, err := svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "NoSuchSymbol"})
		require.NoError(t, err)
		assert.Zero(t, out.Total)
		assert.NotNil(t, out.Symbols)
	})
}

func TestGetDependencies(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})
	ctx := context.Background()

	t.Run("downstream by default", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "App/Models/User.h", MaxDepth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"App/Models/User.m",
			"App/Networking/APIClient.h",
			"App/ViewController.h",
		}, lastNodes(out.Chains))
	})

	t.Run("upstream", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "App/main.m", Direction: "Upstream"})
		require.NoError(t, err)
		assert.Subset(t, lastNodes(out.Chains), []string{"App/AppDelegate.h"})
	})

	t.Run("unknown node", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "App/Nope.h"})
		require.NoError(t, err)
		assert.Empty(t, out.Chains)
	})

	t.Run("nodeId required", func(t *testing.T) {
		_, _, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{})
		assert.ErrorContains(t, err, "nodeId is required")
	})
}

func TestAssessImpact(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})
	ctx := context.Background()

	_, out, err := svc.AssessImpact(ctx, nil, AssessImpactInput{ChangedFiles: []string{"App/Models/User.h"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"App/Models/User.m",
		"App/Networking/APIClient.h",
		"App/ViewController.h",
	}, out.Impact.DirectlyAffected)
	assert.Subset(t, out.Impact.TransitivelyAffected, []string{
		"App/AppDelegate.m",
		"App/Networking/APIClient.m",
		"App/ViewController.m",
	})
	assert.Greater(t, out.Impact.RiskScore, 0.0)
	assert.LessOrEqual(t, out.Impact.RiskScore, 1.0)

	_, _, err = svc.AssessImpact(ctx, nil, AssessImpactInput{})
	assert.ErrorContains(t, err, "changedFiles is required")
}

func TestGetClusters(t *testing.T) {
	svc := newTestService(t, config.ProjectConfig{})

	_, out, err := svc.GetClusters(context.Background(), nil, GetClustersInput{})
	require.NoError(t, err)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, "App/", out.Clusters[0].Name)
	assert.Len(t, out.Clusters[0].Members, 9)
}

func TestParseProject_ReplacesStore(t *testing.T) {
	var stores []*graph.MemStore
	cfg, err := config.ProjectConfig{}.WithDefaults(fixtureAbsPath(t))
	require.NoError(t, err)
	proj, err := project.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = proj.Close() })

	svc := NewCodeIntelService(proj, func() graph.Store {
		s := graph.NewMemStore()
		stores = append(stores, s)
		return s
	})
	ctx := context.Background()

	_, _, err = svc.ParseProject(ctx, nil, ParseProjectInput{})
	require.NoError(t, err)
	_, _, err = svc.ParseProject(ctx, nil, ParseProjectInput{})
	require.NoError(t, err)
	require.Len(t, stores, 2)

	// Queries go to the newest store only.
	_, out, err := svc.GetClusters(ctx, nil, GetClustersInput{})
	require.NoError(t, err)
	assert.Len(t, out.Clusters, 1)
}
