package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stashbroker/broker/internal/catalog"
	"github.com/stashbroker/broker/internal/flea"
	"github.com/stashbroker/broker/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var priceTableCmd = &cobra.Command{
	Use:   "price-table",
	Short: "Generate the flea market price table offline",
	Long: `Generates the flea market price lookup table from the catalog and
listing snapshots, persists it to the configured cache file, and prints
a summary. Useful for warming the cache before starting the service.`,
	RunE: runPriceTable,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(priceTableCmd)
	priceTableCmd.Flags().IntP("top", "t", 20, "Number of highest-priced templates to print")
}

func runPriceTable(cmd *cobra.Command, args []string) error {
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

	cat, err := catalog.Load(catalog.DefaultPath(cfg.DataDir), logger)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	listings, err := catalog.LoadListings(catalog.DefaultListingsPath(cfg.DataDir), logger)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}

	estimator := flea.NewEstimator(flea.EstimatorConfig{
		UseLowestPrice:    cfg.FleaUseLowestPrice,
		IgnoreAttachments: cfg.FleaIgnoreAttachments,
		Logger:            logger,
	}, cat, listings)

	builder := flea.NewBuilder(cat, estimator, logger)
	prices, err := builder.Generate()
	if err != nil {
		return fmt.Errorf("generate price table: %w", err)
	}

	store := flea.NewFileStore(cfg.CacheFile, logger)
	err = store.Save(prices)
	if err != nil {
		return fmt.Errorf("save price table: %w", err)
	}

	top, _ := cmd.Flags().GetInt("top")
	printTopPrices(cat, prices, top)

	fmt.Printf("\nGenerated %d template prices to %s\n", len(prices), cfg.CacheFile)
	return nil
}

func printTopPrices(cat *catalog.FileCatalog, prices map[string]float64, top int) {
	type entry struct {
		id    string
		price float64
	}

	entries := make([]entry, 0, len(prices))
	for id, price := range prices {
		entries = append(entries, entry{id: id, price: price})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].price > entries[j].price
	})

	if top > len(entries) {
		top = len(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tNAME\tPRICE")
	for _, e := range entries[:top] {
		name := e.id
		if tpl, err := cat.Template(e.id); err == nil {
			name = tpl.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\n", e.id, name, e.price)
	}
	_ = w.Flush()
}
