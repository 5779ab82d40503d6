package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "broker",
	Short: "Stash broker pricing and sell-decision service",
	Long: `Stash broker service that values condition-worn item bundles,
compares every eligible trader's buyout offer against the flea market
net of fees, and routes each item to whoever pays the most.

The service loads catalog, trader and listing snapshots from disk,
generates a flea market price lookup table, and serves sell decisions
over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
