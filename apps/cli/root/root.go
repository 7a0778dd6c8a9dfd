package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the wallpapers admin CLI. Subcommands
// (slugs, seed) are attached here.
var rootCmd = &cobra.Command{
	Use:           "wallverse",
	Short:         "Wallpapers catalog admin CLI",
	Long:          "Administrative utilities for the wallpapers catalog (slug backfill, suggestions, seeding).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
