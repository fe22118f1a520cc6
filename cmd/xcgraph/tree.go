package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/export"
)

func newTreeCmd(flags *globalFlags) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the resolved folder hierarchy",
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
			return export.RenderTree(cmd.OutOrStdout(), a.Root, depth)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "max depth (0 = unlimited)")
	return cmd
}
