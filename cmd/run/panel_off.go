//go:build !debug

package main

import "github.com/spf13/cobra"

const debugBuild = false

// addDebugCommands is a no-op in production builds; the diagnostic panel is
// compiled only with -tags debug.
func addDebugCommands(*cobra.Command, *app) {}
