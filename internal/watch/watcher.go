// Package watch reports changes to the files that feed an import closure:
// Objective-C headers and implementation files plus the project.pbxproj
// descriptor. It watches a source tree recursively and debounces the
// bursts of events editors produce for a single save.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/imports"
)

// DebounceInterval is the window within which repeated events for the same
// path are collapsed into one callback.
const DebounceInterval = 50 * time.Millisecond

// DescriptorName is the file name of an Xcode project descriptor.
const DescriptorName = "project.pbxproj"

// Watcher recursively watches a source tree.
type Watcher struct {
	fw     *fsnotify.Watcher
	ignore map[string]bool

	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// New creates a watcher that never descends into directories named in
// ignoreDirs. A nil slice means imports.DefaultExcludeDirs.
func New(ignoreDirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if ignoreDirs == nil {
		ignoreDirs = imports.DefaultExcludeDirs
	}
	ignore := make(map[string]bool, len(ignoreDirs)+2)
	for _, d := range ignoreDirs {
		ignore[d] = true
	}
	ignore["xcuserdata"] = true
	ignore[".xcgraph"] = true

	return &Watcher{
		fw:     fw,
		ignore: ignore,
		done:   make(chan struct{}),
	}, nil
}

// Watch starts monitoring root. onChange is called from a single goroutine
// with the absolute path of each relevant file that was written, created,
// removed or renamed. Monitoring ends when ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func(path string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(absRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != absRoot && w.ignore[d.Name()] {
			return filepath.SkipDir
		}
		return w.fw.Add(p)
	})
	if err != nil {
		return err
	}

	log := ctxlog.FromContext(ctx)
	go w.loop(ctx, absRoot, log.Debug, onChange)
	return nil
}

func (w *Watcher) loop(ctx context.Context, root string, debug func(string, ...any), onChange func(string)) {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			p := event.Name

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(p); err == nil && info.IsDir() {
					if !w.ignore[info.Name()] {
						if err := w.fw.Add(p); err != nil {
							debug("watch: add directory", "path", p, "err", err)
						}
					}
					continue
				}
			}

			if !w.relevant(root, p) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			now := time.Now()
			if prev, seen := last[p]; seen && now.Sub(prev) < DebounceInterval {
				continue
			}
			last[p] = now
			onChange(p)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			debug("watch: fsnotify error", "err", err)

		case <-ctx.Done():
			w.Stop()
			return

		case <-w.done:
			return
		}
	}
}

// Stop ends monitoring and releases all resources. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// relevant reports whether a change to p can alter the project hierarchy or
// an import closure. Only path components below root are matched against
// the ignore list.
func (w *Watcher) relevant(root, p string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(p))
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignore[part] {
			return false
		}
	}
	return Relevant(p)
}

// Relevant reports whether the file at p is a header, an implementation
// file or a project descriptor.
func Relevant(p string) bool {
	base := filepath.Base(p)
	if base == DescriptorName {
		return true
	}
	return imports.Classify(base) != imports.KindUnrecognized
}
