package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/export"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var closureFrom string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the project hierarchy as JSON",
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

			var closure *export.ClosureExport
			if closureFrom != "" {
				set, edges, err := svc.ClosureEdges(ctx, closureFrom)
				if err != nil {
					return err
				}
				closure = &export.ClosureExport{Start: closureFrom, Files: set.Sorted(), Imports: edges}
			}
			return export.WriteJSON(cmd.OutOrStdout(), export.BuildJSON(a, closure))
		},
	}
	cmd.Flags().StringVar(&closureFrom, "closure", "", "also include the import closure of this file")
	return cmd
}
