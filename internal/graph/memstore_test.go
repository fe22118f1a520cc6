package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// importChain builds main.m -> AppDelegate.h -> ViewController.h -> User.h
// with APIClient.h -> User.h on the side.
func importChain(t *testing.T) *MemStore {
	t.Helper()
	files := objcFiles("main.m", "AppDelegate.h", "ViewController.h", "User.h", "APIClient.h")
	edges := []Edge{
		{SourceID: "main.m", TargetID: "AppDelegate.h", Kind: EdgeKindImports},
		{SourceID: "AppDelegate.h", TargetID: "ViewController.h", Kind: EdgeKindImports},
		{SourceID: "ViewController.h", TargetID: "User.h", Kind: EdgeKindImports},
		{SourceID: "APIClient.h", TargetID: "User.h", Kind: EdgeKindImports},
		{SourceID: "User.h", TargetID: "APIClient.h", Kind: EdgeKindCompanion},
	}
	return setupStore(t, files, edges)
}

func lastNodes(chains []DependencyChain) []string {
	out := make([]string, len(chains))
	for i, c := range chains {
		out[i] = c.Nodes[len(c.Nodes)-1]
	}
	return out
}

func TestMemStore_GetDependencies_Upstream(t *testing.T) {
	s := importChain(t)
	ctx := context.Background()

	chains, err := s.GetDependencies(ctx, "main.m", DirectionUpstream, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"AppDelegate.h", "ViewController.h", "User.h"}, lastNodes(chains))
	assert.Equal(t, []string{"main.m", "AppDelegate.h", "ViewController.h", "User.h"}, chains[2].Nodes)
	assert.Equal(t, 3, chains[2].Depth)

	chains, err = s.GetDependencies(ctx, "main.m", DirectionUpstream, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"AppDelegate.h"}, lastNodes(chains))
}

func TestMemStore_GetDependencies_Downstream(t *testing.T) {
	s := importChain(t)

	chains, err := s.GetDependencies(context.Background(), "User.h", DirectionDownstream, 10)
	require.NoError(t, err)
	// Companion edges are not followed.
	assert.Equal(t, []string{"APIClient.h", "ViewController.h", "AppDelegate.h", "main.m"}, lastNodes(chains))
}

func TestMemStore_GetDependencies_ZeroDepth(t *testing.T) {
	s := importChain(t)
	chains, err := s.GetDependencies(context.Background(), "main.m", DirectionUpstream, 0)
	require.NoError(t, err)
	assert.Empty(t, chains)
}

func TestMemStore_AssessImpact(t *testing.T) {
	s := importChain(t)

	res, err := s.AssessImpact(context.Background(), []string{"User.h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"APIClient.h", "ViewController.h"}, res.DirectlyAffected)
	assert.Equal(t, []string{"APIClient.h", "AppDelegate.h", "ViewController.h", "main.m"}, res.TransitivelyAffected)
	assert.InDelta(t, 0.8, res.RiskScore, 1e-9)
}

func TestMemStore_AssessImpact_Leaf(t *testing.T) {
	s := importChain(t)

	res, err := s.AssessImpact(context.Background(), []string{"main.m"})
	require.NoError(t, err)
	assert.Empty(t, res.DirectlyAffected)
	assert.Empty(t, res.TransitivelyAffected)
	assert.Zero(t, res.RiskScore)
}

func TestMemStore_NotFound(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_, err := s.GetFile(ctx, "nope.h")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetSymbol(ctx, "nope.h", "Thing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_FoldersFilesAndStats(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.AddFolder(ctx, FolderNode{Path: "App", Name: "App"}))
	require.NoError(t, s.AddFolder(ctx, FolderNode{Path: "App", Name: "App"}))
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "App/b.m", Name: "b.m", Language: LangObjC}))
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "App/a.h", Name: "a.h", Language: LangObjC}))

	got, err := s.GetFile(ctx, "App/a.h")
	require.NoError(t, err)
	assert.Equal(t, "a.h", got.Name)

	files := s.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "App/a.h", files[0].Path)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, GraphStats{FolderCount: 1, FileCount: 2}, *stats)
}

func TestMemStore_QuerySymbols(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for _, sym := range []SymbolNode{
		{Name: "UserRecordCompare", Kind: SymbolKindFunction, FilePath: "App/User.m"},
		{Name: "UserRecord", Kind: SymbolKindStruct, FilePath: "App/User.h"},
		{Name: "UserRole", Kind: SymbolKindEnum, FilePath: "App/User.h"},
		{Name: "helper", Kind: SymbolKindFunction, FilePath: "App/A.m"},
	} {
		require.NoError(t, s.AddSymbol(ctx, sym))
	}

	got, err := s.QuerySymbols(ctx, "userrec", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "UserRecord", got[0].Name)
	assert.Equal(t, "UserRecordCompare", got[1].Name)

	got, err = s.QuerySymbols(ctx, "user", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "App/User.h", got[0].FilePath)
	assert.Equal(t, "App/User.h", got[1].FilePath)

	sym, err := s.GetSymbol(ctx, "App/A.m", "helper")
	require.NoError(t, err)
	assert.Equal(t, SymbolKindFunction, sym.Kind)
}
