package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ComputeClusters finds connected components of the file graph, linking
// files by IMPORTS and COMPANION edges, and stores every component of two
// or more files as a ClusterNode with BELONGS edges from its members.
//
// A cluster is named after the longest common folder prefix of its
// members. Clusters that would share a name get a "#n" suffix.
func ComputeClusters(ctx context.Context, store Store, files []FileNode) ([]ClusterNode, error) {
	filePaths := make(map[string]bool, len(files))
	ordered := make([]string, 0, len(files))
	for _, f := range files {
		if !filePaths[f.Path] {
			ordered = append(ordered, f.Path)
		}
		filePaths[f.Path] = true
	}
	sort.Strings(ordered)

	adj, err := buildAdjacency(ctx, store, ordered)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(ordered))
	names := make(map[string]int)
	var clusters []ClusterNode

	for _, p := range ordered {
		if visited[p] {
			continue
		}
		component := bfsComponent(p, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)

		name := longestCommonPrefix(component)
		if name == "" {
			name = "/"
		}
		names[name]++
		if n := names[name]; n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}

		cluster := ClusterNode{
			Name:          name,
			CohesionScore: computeCohesion(component, adj, filePaths),
			Members:       component,
		}
		if err := store.AddCluster(ctx, cluster); err != nil {
			return nil, err
		}
		for _, member := range component {
			edge := Edge{SourceID: member, TargetID: name, Kind: EdgeKindBelongs}
			if err := store.AddEdge(ctx, edge); err != nil {
				return nil, err
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters, nil
}

// buildAdjacency constructs an undirected adjacency list from IMPORTS and
// COMPANION edges between known files in a single pass over all edges.
func buildAdjacency(ctx context.Context, store Store, files []string) (map[string]map[string]bool, error) {
	adj := make(map[string]map[string]bool, len(files))
	for _, f := range files {
		adj[f] = make(map[string]bool)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	for _, e := range edges {
		if e.Kind != EdgeKindImports && e.Kind != EdgeKindCompanion {
			continue
		}
		if e.SourceID == e.TargetID {
			continue
		}
		if adj[e.SourceID] != nil && adj[e.TargetID] != nil {
			adj[e.SourceID][e.TargetID] = true
			adj[e.TargetID][e.SourceID] = true
		}
	}
	return adj, nil
}

// bfsComponent returns all nodes reachable from start, marking them
// visited.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// computeCohesion calculates internal_edges / (internal_edges + external_edges)
// for a component. Internal edges connect two members; external edges
// connect a member to a known non-member.
func computeCohesion(component []string, adj map[string]map[string]bool, allFiles map[string]bool) float64 {
	memberSet := make(map[string]bool, len(component))
	for _, m := range component {
		memberSet[m] = true
	}

	internalEdges := 0
	externalEdges := 0
	for _, m := range component {
		for neighbor := range adj[m] {
			if memberSet[neighbor] {
				// Each undirected internal edge is seen from both ends.
				if m < neighbor {
					internalEdges++
				}
			} else if allFiles[neighbor] {
				externalEdges++
			}
		}
	}

	total := internalEdges + externalEdges
	if total == 0 {
		return 0
	}
	return float64(internalEdges) / float64(total)
}

// longestCommonPrefix returns the longest common folder prefix of paths,
// ending in "/", or "" when they share none.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	prefix := paths[0]
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		return ""
	}

	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimSuffix(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1]
		}
	}
	return prefix
}
