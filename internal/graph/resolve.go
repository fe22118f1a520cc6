package graph

import (
	"path"
	"sort"
	"strings"
)

// Resolver rewrites raw import names ("User.h", "Models/User.h") into
// project file paths that match FileNode.Path values. It is built once per
// load with the set of known project paths.
type Resolver struct {
	fileSet map[string]bool
	byBase  map[string][]string // base name -> candidate paths, sorted
}

// NewResolver builds a Resolver from the known project file paths.
func NewResolver(knownFiles []string) *Resolver {
	r := &Resolver{
		fileSet: make(map[string]bool, len(knownFiles)),
		byBase:  make(map[string][]string),
	}
	for _, f := range knownFiles {
		if r.fileSet[f] {
			continue
		}
		r.fileSet[f] = true
		base := path.Base(f)
		r.byBase[base] = append(r.byBase[base], f)
	}
	for _, paths := range r.byBase {
		sort.Strings(paths)
	}
	return r
}

// Resolve maps importName, as written in sourceFile, to a project path.
//
// Candidates are tried in order: the name relative to the importing
// file's folder, the name as a full project path, then any file with the
// same base name. Among several base-name matches the one sharing the
// longest folder prefix with sourceFile wins, ties broken lexically.
func (r *Resolver) Resolve(importName, sourceFile string) (string, bool) {
	name := strings.TrimPrefix(path.Clean(importName), "./")
	if name == "." || name == "" {
		return "", false
	}

	if rel := path.Join(path.Dir(sourceFile), name); r.fileSet[rel] {
		return rel, true
	}
	if r.fileSet[name] {
		return name, true
	}

	candidates := r.byBase[path.Base(name)]
	if strings.Contains(name, "/") {
		// "Models/User.h" must match a path ending in that suffix.
		var filtered []string
		for _, c := range candidates {
			if strings.HasSuffix(c, "/"+name) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}

	best, bestScore := "", -1
	srcDir := path.Dir(sourceFile)
	for _, c := range candidates {
		score := sharedPrefix(srcDir, path.Dir(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, true
}

// ResolveEdge resolves the TargetID of an IMPORTS edge in place. Other edge
// kinds pass through unchanged.
func (r *Resolver) ResolveEdge(edge Edge) (Edge, bool) {
	if edge.Kind != EdgeKindImports {
		return edge, true
	}
	resolved, ok := r.Resolve(edge.TargetID, edge.SourceID)
	if !ok {
		return edge, false
	}
	edge.TargetID = resolved
	return edge, true
}

// ResolveAll resolves every IMPORTS edge, dropping those whose target is
// not a project file (system headers, missing files).
func (r *Resolver) ResolveAll(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if resolved, ok := r.ResolveEdge(e); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// sharedPrefix counts the leading path segments a and b have in common.
func sharedPrefix(a, b string) int {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}
