package imports

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// DefaultExcludeDirs are directory names never descended into when
// indexing a source tree.
var DefaultExcludeDirs = []string{
	"build", "DerivedData", "Pods", "Carthage", ".build", ".git", ".swiftpm",
}

// Index maps a plain file name to its slash-separated path inside the
// indexed file system. Names are not unique across directories; the file
// visited last in lexical walk order wins.
type Index map[string]string

// BuildIndex walks fsys in lexical order and records every regular file.
// Directories whose base name is in excludeDirs are skipped, as are bundle
// directories such as App.xcodeproj.
func BuildIndex(ctx context.Context, fsys fs.FS, excludeDirs []string) (Index, error) {
	log := ctxlog.FromContext(ctx)
	skip := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		skip[d] = true
	}

	idx := make(Index)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && (skip[d.Name()] || isBundle(d.Name())) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if prev, ok := idx[name]; ok {
			log.Debug("imports: file name collision", "name", name, "replaced", prev, "by", p)
		}
		idx[name] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index sources: %w", err)
	}
	return idx, nil
}

func isBundle(name string) bool {
	switch path.Ext(name) {
	case ".xcodeproj", ".xcworkspace", ".xcassets", ".lproj":
		return true
	}
	return strings.HasPrefix(name, ".") && name != "."
}

// Lookup returns the mapped path for name.
func (idx Index) Lookup(name string) (string, bool) {
	p, ok := idx[name]
	return p, ok
}
