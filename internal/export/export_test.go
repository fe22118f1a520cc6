package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/xcgraph/internal/graph"
	"github.com/dusk-indust/xcgraph/internal/pbx"
	"github.com/dusk-indust/xcgraph/internal/project"
)

func sampleTree(t *testing.T) *pbx.Folder {
	t.Helper()
	records := &pbx.Records{
		BuildFiles: map[string]pbx.BuildFileRecord{
			"F1": {ID: "F1", Name: "b.m", Kind: pbx.KindNativeSource},
			"F2": {ID: "F2", Name: "a.h", Kind: pbx.KindNativeSource},
			"F3": {ID: "F3", Name: "User.h", Kind: pbx.KindNativeSource},
		},
		Groups: map[string]pbx.GroupRecord{
			"G1": {ID: "G1", Name: "App", ChildIDs: []string{"F1", "F2", "G2", "G3"}},
			"G2": {ID: "G2", Name: "Models", ChildIDs: []string{"F3"}},
			"G3": {ID: "G3", Name: "Empty"},
		},
	}
	root, err := pbx.ResolveID(context.Background(), records, "G1")
	require.NoError(t, err)
	return root
}

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTree(&buf, sampleTree(t), 0))

	assert.Equal(t, `App/
├── Empty/
├── Models/
│   └── User.h
├── a.h
└── b.m
`, buf.String())
}

func TestRenderTree_Depth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTree(&buf, sampleTree(t), 1))

	assert.Equal(t, `App/
├── Empty/
├── Models/
├── a.h
└── b.m
`, buf.String())
}

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	for _, p := range []string{"App/a.h", "App/a.m", "App/main.m"} {
		require.NoError(t, store.AddFile(ctx, graph.FileNode{Path: p, Language: graph.LangObjC}))
	}
	require.NoError(t, store.AddEdge(ctx, graph.Edge{SourceID: "App/main.m", TargetID: "App/a.h", Kind: graph.EdgeKindImports}))
	require.NoError(t, store.AddEdge(ctx, graph.Edge{SourceID: "App/a.h", TargetID: "App/a.m", Kind: graph.EdgeKindCompanion}))
	require.NoError(t, store.AddEdge(ctx, graph.Edge{SourceID: "App", TargetID: "App/a.h", Kind: graph.EdgeKindContains}))
	require.NoError(t, store.AddCluster(ctx, graph.ClusterNode{Name: "App/", Members: []string{"App/a.m", "App/a.h"}}))

	got, err := GenerateMermaid(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, `graph TD
  subgraph N0["App/"]
    N1["App/a.h"]
    N2["App/a.m"]
  end
  N3["App/main.m"]
  N1 -.- N2
  N3 --> N1
`, got)
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "main.m", shortPath("main.m"))
	assert.Equal(t, "App/main.m", shortPath("App/main.m"))
	assert.Equal(t, "Models/User.h", shortPath("App/Models/User.h"))
}

func TestBuildJSON(t *testing.T) {
	a := &project.Analysis{
		Root:    sampleTree(t),
		Summary: project.Summary{BuildFiles: 3, Groups: 3, Folders: 3, Files: 3, NativeSources: 3},
	}
	closure := &ClosureExport{
		Start:   "a.h",
		Files:   []string{"User.h", "a.h"},
		Imports: [][2]string{{"a.h", "User.h"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, BuildJSON(a, closure)))

	var got ProjectExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.NotEmpty(t, got.ExportedAt)
	assert.Equal(t, a.Summary, got.Summary)
	assert.Equal(t, closure, got.Closure)

	assert.Equal(t, "App", got.Tree.Path)
	require.Len(t, got.Tree.Files, 2)
	assert.Equal(t, FileExport{ID: "F2", Name: "a.h", Path: "App/a.h"}, got.Tree.Files[0])
	require.Len(t, got.Tree.Subfolders, 2)
	assert.Equal(t, "Empty", got.Tree.Subfolders[0].Name)
	assert.Empty(t, got.Tree.Subfolders[0].Files)
	assert.Equal(t, "App/Models/User.h", got.Tree.Subfolders[1].Files[0].Path)
}

func TestBuildJSON_NoClosure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, BuildJSON(&project.Analysis{Root: sampleTree(t)}, nil)))
	assert.NotContains(t, buf.String(), `"closure"`)
}
