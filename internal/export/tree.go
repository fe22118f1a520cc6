package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dusk-indust/xcgraph/internal/pbx"
)

// RenderTree writes root as an indented tree, subfolders first, each group
// sorted by name. depth limits how many folder levels are expanded; zero
// means unlimited.
func RenderTree(w io.Writer, root *pbx.Folder, depth int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s/\n", root.Name)
	walkTree(bw, root, "", 1, depth)
	return bw.Flush()
}

func walkTree(w *bufio.Writer, folder *pbx.Folder, prefix string, level, maxDepth int) {
	subs := folder.SortedSubfolders()
	files := folder.SortedFiles()
	total := len(subs) + len(files)

	i := 0
	for _, sub := range subs {
		i++
		last := i == total
		fmt.Fprintf(w, "%s%s%s/\n", prefix, connector(last), sub.Name)
		if maxDepth == 0 || level < maxDepth {
			walkTree(w, sub, childPrefix(prefix, last), level+1, maxDepth)
		}
	}
	for _, f := range files {
		i++
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector(i == total), f.Name)
	}
}

func connector(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func childPrefix(prefix string, last bool) string {
	if last {
		return prefix + "    "
	}
	return prefix + "│   "
}
