package imports

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// ParallelWalker computes the same closure as Walker, extracting
// independent files concurrently. The visited set is guarded by a mutex and
// a name is claimed before it is extracted, so no file is read twice.
type ParallelWalker struct {
	Walker
	// Limit bounds concurrent extractions. Zero or less means unbounded.
	Limit int
}

type parallelRun struct {
	w       Walker
	g       *errgroup.Group
	mu      sync.Mutex
	visited Set
}

// Closure returns every file name visited from start.
func (p *ParallelWalker) Closure(ctx context.Context, start string) (Set, error) {
	g, gctx := errgroup.WithContext(ctx)
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}

	run := &parallelRun{w: p.Walker, g: g, visited: make(Set)}
	if onImport := p.OnImport; onImport != nil {
		run.w.OnImport = func(from, to string) {
			run.mu.Lock()
			defer run.mu.Unlock()
			onImport(from, to)
		}
	}

	g.Go(func() error { return run.visit(gctx, start) })
	err := g.Wait()

	run.mu.Lock()
	defer run.mu.Unlock()
	return run.visited, err
}

// claim marks name visited and reports whether the caller won it.
func (r *parallelRun) claim(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visited.Has(name) {
		return false
	}
	r.visited.Add(name)
	return true
}

func (r *parallelRun) visit(ctx context.Context, name string) error {
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
		if !r.claim(member) {
			continue
		}
		for _, imp := range r.w.ImportsFromFile(ctx, member) {
			pending.Add(imp)
		}
	}

	for _, next := range pending.Sorted() {
		// When every slot is taken, continue on this goroutine instead of
		// blocking on a slot held by a caller waiting on us.
		if !r.g.TryGo(func() error { return r.visit(ctx, next) }) {
			if err := r.visit(ctx, next); err != nil {
				return err
			}
		}
	}
	return nil
}
