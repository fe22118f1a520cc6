// xcgraph reads an Xcode project descriptor, rebuilds its folder hierarchy
// and answers import closure and dependency questions about the
// Objective-C sources it lists.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/xcgraph/internal/config"
	"github.com/dusk-indust/xcgraph/internal/ctxlog"
	"github.com/dusk-indust/xcgraph/internal/project"
)

// version is set by goreleaser at build time.
var version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	ProjectRoot string
	Verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "xcgraph",
		Short:         "Xcode project hierarchy and import graph explorer",
		Long:          "Parses project.pbxproj, rebuilds the group hierarchy and follows #import directives between headers and implementation files.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.ProjectRoot, "project-root", ".", "directory containing the .xcodeproj bundle")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newTreeCmd(flags),
		newClosureCmd(flags),
		newStatsCmd(flags),
		newExportCmd(flags),
		newWatchCmd(flags),
		newServeCmd(flags),
	)
	addGraphCommands(root, flags)
	return root
}

// loadConfig reads xcgraph.yml and .env from the project root and fills in
// defaults.
func loadConfig(flags *globalFlags) (config.ProjectConfig, error) {
	dir, err := filepath.Abs(flags.ProjectRoot)
	if err != nil {
		return config.ProjectConfig{}, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return config.ProjectConfig{}, err
	}
	if err := config.LoadEnv(dir, cfg); err != nil {
		return config.ProjectConfig{}, err
	}
	if flags.Verbose {
		cfg.Verbose = true
	}
	return cfg.WithDefaults(dir)
}

// openProject builds the project service for a command and returns a
// context carrying the command's logger.
func openProject(cmd *cobra.Command, flags *globalFlags) (context.Context, *project.Service, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	logger := ctxlog.New(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	svc, err := project.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, svc, nil
}
