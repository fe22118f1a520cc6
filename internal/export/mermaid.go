package export

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/xcgraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a graph store.
// Files are grouped by cluster; IMPORTS edges become solid arrows and
// COMPANION edges dotted links. Output is deterministic for a given store.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return "", fmt.Errorf("get clusters: %w", err)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	// Mermaid ids must be alphanumeric.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Name < clusters[j].Name })

	var links []graph.Edge
	for _, e := range edges {
		if e.Kind == graph.EdgeKindImports || e.Kind == graph.EdgeKindCompanion {
			links = append(links, e)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.Kind < b.Kind
	})

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool)
	for _, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		members := make([]string, len(c.Members))
		copy(members, c.Members)
		sort.Strings(members)

		fmt.Fprintf(&sb, "  subgraph %s[\"%.40s\"]\n", getID(c.Name+"_cluster"), c.Name)
		for _, member := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID(member), shortPath(member))
			declared[member] = true
		}
		sb.WriteString("  end\n")
	}

	// Files outside any cluster still need a readable label.
	var loose []string
	for _, e := range links {
		for _, p := range []string{e.SourceID, e.TargetID} {
			if !declared[p] {
				declared[p] = true
				loose = append(loose, p)
			}
		}
	}
	sort.Strings(loose)
	for _, p := range loose {
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", getID(p), shortPath(p))
	}

	for _, e := range links {
		arrow := "-->"
		if e.Kind == graph.EdgeKindCompanion {
			arrow = "-.-"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", getID(e.SourceID), arrow, getID(e.TargetID))
	}

	return sb.String(), nil
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(path.Clean(p), "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
