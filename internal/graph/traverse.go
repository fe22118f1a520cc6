package graph

import (
	"math"
	"slices"
	"sort"
)

// neighborFunc returns the files one IMPORTS hop from path, sorted.
type neighborFunc func(path string, dir Direction) ([]string, error)

// dependencyChains walks IMPORTS edges breadth-first from start for up to
// maxDepth hops. Each reachable file yields one chain along the first path
// that reached it; chains come out by depth, then in neighbor order.
func dependencyChains(start string, dir Direction, maxDepth int, next neighborFunc) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{start: true}
	frontier := [][]string{{start}}
	var chains []DependencyChain

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var following [][]string
		for _, path := range frontier {
			neighbors, err := next(path[len(path)-1], dir)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				nodes := append(slices.Clip(path), nb)
				chains = append(chains, DependencyChain{Nodes: nodes, Depth: depth})
				following = append(following, nodes)
			}
		}
		frontier = following
	}
	return chains, nil
}

// assessImpact collects the importers of changed, directly and through
// other importers. Changed files are never reported as affected and are not
// walked through. RiskScore is the affected share of totalFiles, capped at 1.
func assessImpact(changed []string, totalFiles int, next neighborFunc) (*ImpactResult, error) {
	isChanged := make(map[string]bool, len(changed))
	for _, f := range changed {
		isChanged[f] = true
	}

	direct := make(map[string]bool)
	affected := make(map[string]bool)
	frontier := append([]string(nil), changed...)
	sort.Strings(frontier)

	for first := true; len(frontier) > 0; first = false {
		var following []string
		for _, f := range frontier {
			importers, err := next(f, DirectionDownstream)
			if err != nil {
				return nil, err
			}
			for _, imp := range importers {
				if isChanged[imp] || affected[imp] {
					continue
				}
				affected[imp] = true
				if first {
					direct[imp] = true
				}
				following = append(following, imp)
			}
		}
		frontier = following
	}

	risk := 0.0
	if totalFiles > 0 {
		risk = math.Min(1, float64(len(affected))/float64(totalFiles))
	}
	return &ImpactResult{
		DirectlyAffected:     setToSlice(direct),
		TransitivelyAffected: setToSlice(affected),
		RiskScore:            risk,
	}, nil
}

// setToSlice converts a string bool map to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
