package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print descriptor record counts",
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

			s := a.Summary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s %d\n", "build files", s.BuildFiles)
			fmt.Fprintf(out, "%-16s %d\n", "groups", s.Groups)
			fmt.Fprintf(out, "%-16s %d\n", "folders", s.Folders)
			fmt.Fprintf(out, "%-16s %d\n", "files", s.Files)
			fmt.Fprintf(out, "%-16s %d\n", "native sources", s.NativeSources)
			fmt.Fprintf(out, "%-16s %d\n", "managed sources", s.ManagedSources)
			fmt.Fprintf(out, "%-16s %d\n", "indexed files", s.IndexedFiles)
			return nil
		},
	}
}
