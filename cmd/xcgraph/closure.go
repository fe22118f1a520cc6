package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/export"
)

func newClosureCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "closure <file>",
		Short: "List every file reachable from a header or implementation file",
		Long:  "Follows quoted #import directives from <file>, pulling in each header's implementation file, and prints the sorted set of file names.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svc, err := openProject(cmd, flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			set, edges, err := svc.ClosureEdges(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return export.WriteJSON(out, export.ClosureExport{
					Start:   args[0],
					Files:   set.Sorted(),
					Imports: edges,
				})
			}
			for _, name := range set.Sorted() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the closure and its import edges as JSON")
	return cmd
}
