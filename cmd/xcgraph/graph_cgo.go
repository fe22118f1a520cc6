//go:build cgo

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/export"
	"github.com/dusk-indust/xcgraph/internal/graph"
)

// graphDir is where the persistent graph lives, relative to the project root.
const graphDir = ".xcgraph/graph"

func addGraphCommands(root *cobra.Command, flags *globalFlags) {
	root.AddCommand(newIndexCmd(flags), newDiagramCmd(flags))
}

func graphPath(flags *globalFlags) (string, error) {
	dir, err := filepath.Abs(flags.ProjectRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(graphDir)), nil
}

func newIndexCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the persistent import graph",
		Long:  "Analyzes the project and writes folders, files, symbols, imports and clusters to a Kuzu database under .xcgraph/graph, replacing any previous index.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := openProject(cmd, flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			a, err := svc.Analyze(ctx)
			if err != nil {
				return err
			}

			path, err := graphPath(flags)
			if err != nil {
				return err
			}
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("remove old graph: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create graph directory: %w", err)
			}

			store, err := graph.NewKuzuFileStore(path)
			if err != nil {
				return fmt.Errorf("open graph: %w", err)
			}
			defer store.Close()

			if _, err := svc.LoadGraph(ctx, store, a); err != nil {
				return fmt.Errorf("load graph: %w", err)
			}
			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files, %d symbols, %d clusters, %d edges into %s\n",
				stats.FileCount, stats.SymbolCount, stats.ClusterCount, stats.EdgeCount, path)
			return nil
		},
	}
}

func newDiagramCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram",
		Short: "Print the indexed import graph as a Mermaid flowchart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := graphPath(flags)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no graph found at %s\nRun 'xcgraph index' first", path)
			}

			store, err := graph.NewKuzuFileStore(path)
			if err != nil {
				return fmt.Errorf("open graph: %w", err)
			}
			defer store.Close()

			mermaid, err := export.GenerateMermaid(cmd.Context(), store)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), mermaid)
			return err
		},
	}
}
