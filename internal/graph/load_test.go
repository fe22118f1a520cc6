package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/xcgraph/internal/imports"
	"github.com/dusk-indust/xcgraph/internal/pbx"
)

const fixtureProject = "../../testdata/fixtures/xcode_project"

func loadFixture(t *testing.T, withSources bool) (*MemStore, *LoadResult) {
	t.Helper()
	ctx := context.Background()

	records, err := pbx.ParseFile(ctx, fixtureProject+"/App.xcodeproj/project.pbxproj")
	require.NoError(t, err)
	root, err := pbx.Resolve(ctx, records, "App")
	require.NoError(t, err)

	in := LoadInput{Root: root}
	if withSources {
		fsys := os.DirFS(fixtureProject)
		idx, err := imports.BuildIndex(ctx, fsys, imports.DefaultExcludeDirs)
		require.NoError(t, err)
		in.FS = fsys
		in.Index = idx
		in.Parser = NewTreeSitterParser()
	}

	store := NewMemStore()
	res, err := Load(ctx, store, in)
	require.NoError(t, err)
	return store, res
}

func edgesOf(t *testing.T, s *MemStore, kind EdgeKind) []Edge {
	t.Helper()
	all, err := s.GetAllEdges(context.Background())
	require.NoError(t, err)
	return findEdgesByKind(all, kind)
}

func TestLoad_Fixture(t *testing.T) {
	store, res := loadFixture(t, true)
	ctx := context.Background()

	assert.Equal(t, 4, res.Folders)
	assert.Equal(t, 10, res.Files)
	assert.Equal(t, 4, res.Companions)
	assert.Positive(t, res.Symbols)

	t.Run("files", func(t *testing.T) {
		user, err := store.GetFile(ctx, "App/Models/User.h")
		require.NoError(t, err)
		assert.Equal(t, LangObjC, user.Language)
		assert.Equal(t, 17, user.LOC)

		swift, err := store.GetFile(ctx, "App/Models/Session.swift")
		require.NoError(t, err)
		assert.Equal(t, LangSwift, swift.Language)
	})

	t.Run("contains", func(t *testing.T) {
		contains := edgesOf(t, store, EdgeKindContains)
		// 3 subfolders + 10 files.
		assert.Len(t, contains, 13)
		assert.Contains(t, contains, Edge{SourceID: "App", TargetID: "App/Models", Kind: EdgeKindContains})
		assert.Contains(t, contains, Edge{SourceID: "App/Models", TargetID: "App/Models/User.h", Kind: EdgeKindContains})
	})

	t.Run("imports", func(t *testing.T) {
		got := edgesOf(t, store, EdgeKindImports)
		assert.Equal(t, res.Imports, len(got))
		for _, want := range []Edge{
			{SourceID: "App/AppDelegate.m", TargetID: "App/AppDelegate.h"},
			{SourceID: "App/AppDelegate.m", TargetID: "App/ViewController.h"},
			{SourceID: "App/ViewController.h", TargetID: "App/Models/User.h"},
			{SourceID: "App/ViewController.m", TargetID: "App/Networking/APIClient.h"},
			{SourceID: "App/Networking/APIClient.h", TargetID: "App/Models/User.h"},
			{SourceID: "App/Networking/APIClient.m", TargetID: "App/Networking/APIClient.h"},
			{SourceID: "App/Models/User.m", TargetID: "App/Models/User.h"},
			{SourceID: "App/main.m", TargetID: "App/AppDelegate.h"},
		} {
			want.Kind = EdgeKindImports
			assert.Contains(t, got, want)
		}

		// Every import lands on a project file; Late.h is not one.
		seen := make(map[Edge]bool)
		for _, e := range got {
			_, err := store.GetFile(ctx, e.TargetID)
			assert.NoError(t, err, "import target %s", e.TargetID)
			assert.NotEqual(t, e.SourceID, e.TargetID)
			assert.False(t, seen[e], "duplicate edge %v", e)
			seen[e] = true
		}
	})

	t.Run("companions", func(t *testing.T) {
		assert.ElementsMatch(t, []Edge{
			{SourceID: "App/AppDelegate.h", TargetID: "App/AppDelegate.m", Kind: EdgeKindCompanion},
			{SourceID: "App/Models/User.h", TargetID: "App/Models/User.m", Kind: EdgeKindCompanion},
			{SourceID: "App/Networking/APIClient.h", TargetID: "App/Networking/APIClient.m", Kind: EdgeKindCompanion},
			{SourceID: "App/ViewController.h", TargetID: "App/ViewController.m", Kind: EdgeKindCompanion},
		}, edgesOf(t, store, EdgeKindCompanion))
	})

	t.Run("symbols", func(t *testing.T) {
		syms, err := store.QuerySymbols(ctx, "UserRecordCompare", 0)
		require.NoError(t, err)
		require.NotEmpty(t, syms)
		var files []string
		for _, s := range syms {
			files = append(files, s.FilePath)
		}
		assert.Contains(t, files, "App/Models/User.h")
	})

	t.Run("clusters", func(t *testing.T) {
		require.Len(t, res.Clusters, 1)
		assert.Equal(t, "App/", res.Clusters[0].Name)
		assert.Len(t, res.Clusters[0].Members, 9)
		assert.NotContains(t, res.Clusters[0].Members, "App/Models/Session.swift")
	})

	t.Run("dependencies", func(t *testing.T) {
		chains, err := store.GetDependencies(ctx, "App/Models/User.h", DirectionDownstream, 1)
		require.NoError(t, err)
		assert.Subset(t, lastNodes(chains), []string{
			"App/Models/User.m",
			"App/Networking/APIClient.h",
			"App/ViewController.h",
		})
	})
}

func TestLoad_TreeOnly(t *testing.T) {
	store, res := loadFixture(t, false)

	assert.Equal(t, 4, res.Folders)
	assert.Equal(t, 10, res.Files)
	assert.Zero(t, res.Imports)
	assert.Zero(t, res.Symbols)
	// Companions come from the tree alone.
	assert.Equal(t, 4, res.Companions)
	assert.Len(t, res.Clusters, 4)

	f, err := store.GetFile(context.Background(), "App/main.m")
	require.NoError(t, err)
	assert.Zero(t, f.LOC)
}

func TestLoad_NilRoot(t *testing.T) {
	_, err := Load(context.Background(), NewMemStore(), LoadInput{})
	assert.Error(t, err)
}
