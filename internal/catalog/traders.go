package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// TraderFile holds the trader roster loaded from disk plus the currency
// stock assignments the purchase redirect needs.
type TraderFile struct {
	Traders       []*types.TraderMeta `json:"traders"`
	CurrencyStock map[string]string   `json:"currencyStock"` // currency template id -> stocking trader id
}

// LoadTraders reads the trader roster from path. When customIDs is
// non-empty, only those trader ids are kept; unknown ids are logged and
// skipped.
func LoadTraders(path string, customIDs []string, logger *zap.Logger) (*TraderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read traders file: %w", err)
	}

	var file TraderFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("unmarshal traders file: %w", err)
	}

	if len(customIDs) > 0 {
		kept := lo.Filter(file.Traders, func(t *types.TraderMeta, _ int) bool {
			return lo.Contains(customIDs, t.ID)
		})
		for _, id := range customIDs {
			if !lo.SomeBy(file.Traders, func(t *types.TraderMeta) bool { return t.ID == id }) {
				logger.Warn("unknown-custom-trader-id", zap.String("trader-id", id))
			}
		}
		file.Traders = kept
	}

	logger.Info("traders-loaded",
		zap.String("path", path),
		zap.Int("traders", len(file.Traders)))

	return &file, nil
}

// StockingTrader maps a currency template to the trader stocking it.
func (f *TraderFile) StockingTrader(currencyTemplateID string) (string, bool) {
	id, ok := f.CurrencyStock[currencyTemplateID]
	return id, ok
}

// DefaultTradersPath returns the trader roster path under a data directory.
func DefaultTradersPath(dataDir string) string {
	return filepath.Join(dataDir, "traders.json")
}
