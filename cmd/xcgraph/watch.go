package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/project"
	"github.com/dusk-indust/xcgraph/internal/watch"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze the project whenever a source or descriptor changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := openProject(cmd, flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			cfg := svc.Config()
			out := cmd.OutOrStdout()
			report(ctx, out, svc, file)

			changes := make(chan string, 64)
			roots := []string{cfg.SourceRoot}
			if bundle := filepath.Dir(cfg.Descriptor); !strings.HasPrefix(bundle, cfg.SourceRoot+string(filepath.Separator)) {
				roots = append(roots, bundle)
			}
			for _, root := range roots {
				w, err := watch.New(cfg.ExcludeDirs)
				if err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
				defer w.Stop()
				if err := w.Watch(ctx, root, func(p string) {
					select {
					case changes <- p:
					default:
					}
				}); err != nil {
					return fmt.Errorf("watch %s: %w", root, err)
				}
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case p := <-changes:
					ctxlog.FromContext(ctx).Debug("watch: changed", "path", p)
					fmt.Fprintf(out, "changed: %s\n", p)
					report(ctx, out, svc, file)
				}
			}
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "print the import closure of this file after every change")
	return cmd
}

// report re-analyzes the project and prints a one-line summary. Failures
// are printed rather than returned so that a half-saved descriptor does not
// end the watch.
func report(ctx context.Context, out io.Writer, svc *project.Service, file string) {
	a, err := svc.Analyze(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "folders=%d files=%d indexed=%d\n", a.Summary.Folders, a.Summary.Files, a.Summary.IndexedFiles)
	if file == "" {
		return
	}
	set, err := svc.Closure(ctx, file)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "closure(%s)=%s\n", file, strings.Join(set.Sorted(), " "))
}
