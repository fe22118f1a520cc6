package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/mcptools"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as an MCP server",
		Long:  "Serves the project tools over MCP on stdin/stdout, or over streamable HTTP when --addr is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := openProject(cmd, flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			tools := mcptools.NewCodeIntelService(svc, nil)
			defer tools.Close()

			if addr == "" {
				return mcptools.RunStdio(ctx, tools)
			}
			ctxlog.FromContext(ctx).Info("serve: listening", "addr", addr)
			return mcptools.RunHTTP(ctx, tools, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for streamable HTTP, e.g. :8080")
	return cmd
}
