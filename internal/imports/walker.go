package imports

import (
	"context"
	"io/fs"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// Walker computes import closures over the files of FS.
type Walker struct {
	// FS holds the sources; Index paths are relative to it.
	FS fs.FS
	// Index maps plain file names to paths in FS.
	Index Index
	// Cache, if set, memoizes extraction per file version.
	Cache Cache
	// OnImport, if set, is called once for every import a processed file
	// declares.
	OnImport func(from, to string)
}

// ImportsFromFile returns the quoted imports of the file mapped to name.
// An unmapped or unreadable file is logged and yields no imports.
func (w *Walker) ImportsFromFile(ctx context.Context, name string) []string {
	log := ctxlog.FromContext(ctx)

	p, ok := w.Index.Lookup(name)
	if !ok {
		log.Debug("imports: file not found", "name", name)
		return nil
	}

	var key string
	if w.Cache != nil {
		if info, err := fs.Stat(w.FS, p); err == nil {
			key = CacheKey(p, info)
			if names, hit := w.Cache.Get(key); hit {
				w.report(name, names)
				return names
			}
		}
	}

	f, err := w.FS.Open(p)
	if err != nil {
		log.Warn("imports: cannot open file", "name", name, "path", p, "err", err)
		return nil
	}
	defer f.Close()

	names, err := ExtractImports(ctx, f)
	if err != nil {
		log.Warn("imports: cannot read file", "name", name, "path", p, "err", err)
		return names
	}
	if key != "" {
		w.Cache.Add(key, names)
	}
	w.report(name, names)
	return names
}

func (w *Walker) report(from string, names []string) {
	if w.OnImport == nil {
		return
	}
	for _, to := range names {
		w.OnImport(from, to)
	}
}

// Closure returns every file name visited from start: start, its companion,
// and recursively the imports of both. A companion with no file behind it
// is still visited and contributes no imports. Each name is extracted at
// most once. The only error is cancellation of ctx.
func (w *Walker) Closure(ctx context.Context, start string) (Set, error) {
	visited := make(Set)
	if err := w.visit(ctx, start, visited); err != nil {
		return visited, err
	}
	return visited, nil
}

// ClosureInto extends visited with the closure of start.
func (w *Walker) ClosureInto(ctx context.Context, start string, visited Set) error {
	return w.visit(ctx, start, visited)
}

func (w *Walker) visit(ctx context.Context, name string, visited Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pair, ok := pairOf(name)
	if !ok {
		ctxlog.FromContext(ctx).Debug("imports: unrecognized extension", "name", name)
		return nil
	}

	pending := make(Set)
	for _, member := range pair {
		if visited.Has(member) {
			continue
		}
		for _, imp := range w.ImportsFromFile(ctx, member) {
			pending.Add(imp)
		}
		visited.Add(member)
	}

	for _, next := range pending.Sorted() {
		if err := w.visit(ctx, next, visited); err != nil {
			return err
		}
	}
	return nil
}

// pairOf returns name and its companion, header first.
func pairOf(name string) ([]string, bool) {
	companion, ok := Companion(name)
	if !ok {
		return nil, false
	}
	if Classify(name) == KindHeader {
		return []string{name, companion}, true
	}
	return []string{companion, name}, true
}
