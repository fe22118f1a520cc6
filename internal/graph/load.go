package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/imports"
	"github.com/dusk-indust/xcgraph/internal/pbx"
)

// LoadInput is what Load writes into a store.
type LoadInput struct {
	Root *pbx.Folder
	// FS and Index locate file contents by plain name. Without them only
	// the folder tree is loaded.
	FS    fs.FS
	Index imports.Index
	// Parser, if set, contributes symbols and #include edges.
	Parser Parser
}

// LoadResult counts what Load wrote.
type LoadResult struct {
	Folders    int           `json:"folders"`
	Files      int           `json:"files"`
	Symbols    int           `json:"symbols"`
	Imports    int           `json:"imports"`
	Companions int           `json:"companions"`
	Clusters   []ClusterNode `json:"clusters"`
}

// Load writes the resolved project tree into store as Folder and File
// nodes joined by CONTAINS edges, then adds IMPORTS edges between project
// files, COMPANION edges from headers to implementations, parsed symbols,
// and import clusters. Imports that resolve to no project file are
// dropped.
func Load(ctx context.Context, store Store, in LoadInput) (*LoadResult, error) {
	if in.Root == nil {
		return nil, errors.New("graph: load: nil root folder")
	}
	log := ctxlog.FromContext(ctx)
	res := &LoadResult{}

	var (
		files    []FileNode
		contains []Edge
		raw      []Edge
		defines  []Edge
	)

	var walkErr error
	in.Root.Walk(func(folder *pbx.Folder) {
		if walkErr != nil {
			return
		}
		if err := store.AddFolder(ctx, FolderNode{Path: folder.Path, Name: folder.Name}); err != nil {
			walkErr = fmt.Errorf("add folder %s: %w", folder.Path, err)
			return
		}
		res.Folders++
		for _, sub := range folder.SortedSubfolders() {
			contains = append(contains, Edge{SourceID: folder.Path, TargetID: sub.Path, Kind: EdgeKindContains})
		}
		for _, f := range folder.SortedFiles() {
			contains = append(contains, Edge{SourceID: folder.Path, TargetID: f.Path, Kind: EdgeKindContains})

			node := FileNode{Path: f.Path, Name: f.Name, Language: LanguageForPath(f.Name)}
			source, ok := readSource(in, f.Name)
			if !ok {
				log.Debug("graph: no source for project file", "path", f.Path)
			}
			node.LOC = countLOC(source)

			if ok && (node.Language == LangObjC || node.Language == LangC) {
				names, err := imports.ExtractImports(ctx, bytes.NewReader(source))
				if err != nil {
					log.Warn("graph: extract imports", "path", f.Path, "err", err)
				}
				for _, name := range names {
					raw = append(raw, Edge{SourceID: f.Path, TargetID: name, Kind: EdgeKindImports})
				}

				if in.Parser != nil {
					pr, err := in.Parser.Parse(ctx, f.Path, source, node.Language)
					if err != nil {
						log.Warn("graph: parse", "path", f.Path, "err", err)
					} else {
						for _, sym := range pr.Symbols {
							if err := store.AddSymbol(ctx, sym); err != nil {
								walkErr = fmt.Errorf("add symbol %s: %w", sym.Name, err)
								return
							}
							res.Symbols++
						}
						for _, e := range pr.Edges {
							switch e.Kind {
							case EdgeKindDefines:
								defines = append(defines, e)
							case EdgeKindImports:
								raw = append(raw, e)
							}
						}
					}
				}
			}

			if err := store.AddFile(ctx, node); err != nil {
				walkErr = fmt.Errorf("add file %s: %w", f.Path, err)
				return
			}
			files = append(files, node)
			res.Files++
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	resolver := NewResolver(paths)

	edges := append(contains, defines...)
	seen := make(map[Edge]bool)
	for _, e := range resolver.ResolveAll(raw) {
		if e.SourceID == e.TargetID || seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
		res.Imports++
	}

	for _, f := range files {
		if imports.Classify(f.Name) != imports.KindHeader {
			continue
		}
		companion, _ := imports.Companion(f.Name)
		if target, ok := resolver.Resolve(companion, f.Path); ok {
			edges = append(edges, Edge{SourceID: f.Path, TargetID: target, Kind: EdgeKindCompanion})
			res.Companions++
		}
	}

	for _, e := range edges {
		if err := store.AddEdge(ctx, e); err != nil {
			return nil, fmt.Errorf("add %s edge %s -> %s: %w", e.Kind, e.SourceID, e.TargetID, err)
		}
	}

	clusters, err := ComputeClusters(ctx, store, files)
	if err != nil {
		return nil, fmt.Errorf("compute clusters: %w", err)
	}
	res.Clusters = clusters
	return res, nil
}

func readSource(in LoadInput, name string) ([]byte, bool) {
	if in.FS == nil || in.Index == nil {
		return nil, false
	}
	p, ok := in.Index.Lookup(name)
	if !ok {
		return nil, false
	}
	data, err := fs.ReadFile(in.FS, p)
	if err != nil {
		return nil, false
	}
	return data, true
}
