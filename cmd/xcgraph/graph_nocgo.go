//go:build !cgo

package main

import "github.com/spf13/cobra"

// addGraphCommands registers nothing without CGo: the persistent graph
// store is Kuzu, which needs it.
func addGraphCommands(_ *cobra.Command, _ *globalFlags) {}
