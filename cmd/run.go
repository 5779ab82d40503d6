package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stashbroker/broker/internal/app"
	"github.com/stashbroker/broker/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the broker service",
	Long: `Starts the broker service, which will:
1. Load catalog, trader, listing and profile snapshots from the data directory
2. Load or generate the flea market price lookup table
3. Serve sell decisions, the price table and trade confirmation over HTTP

Use --regenerate-table to rebuild the price table even when a cached
one exists on disk.`,
	RunE: runBroker,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("regenerate-table", "r", false, "Rebuild the price table even when a cached one exists")
}

func runBroker(cmd *cobra.Command, args []string) error {
	// Load .env, if present
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	regenerate, _ := cmd.Flags().GetBool("regenerate-table")

	opts := &app.Options{
		RegenerateTable: regenerate,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
