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

// FileCatalog serves templates, prices and globals loaded from a JSON
// snapshot on disk. All lookups are read-only after Load, so the catalog
// is safe for concurrent use without locking.
type FileCatalog struct {
	templates        map[string]*types.Template
	basePrices       map[string]float64
	staticEstimates  map[string]float64
	dynamicEstimates map[string]float64
	categoryParents  map[string]string // category id -> parent category id
	globals          *types.Globals
	currencies       []types.Currency
	marketIDs        []string
	logger           *zap.Logger
}

// catalogFile is the on-disk snapshot layout.
type catalogFile struct {
	Templates        []*types.Template  `json:"templates"`
	BasePrices       map[string]float64 `json:"basePrices"`
	StaticEstimates  map[string]float64 `json:"staticEstimates"`
	DynamicEstimates map[string]float64 `json:"dynamicEstimates"`
	CategoryParents  map[string]string  `json:"categoryParents"`
	Globals          *types.Globals     `json:"globals"`
	Currencies       []types.Currency   `json:"currencies"`
}

// Load reads a catalog snapshot from path.
func Load(path string, logger *zap.Logger) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("unmarshal catalog file: %w", err)
	}

	if file.Globals == nil {
		return nil, fmt.Errorf("catalog file %s has no globals section", path)
	}

	templates := make(map[string]*types.Template, len(file.Templates))
	for _, tpl := range file.Templates {
		templates[tpl.ID] = tpl
	}

	marketIDs := lo.FilterMap(file.Templates, func(tpl *types.Template, _ int) (string, bool) {
		return tpl.ID, tpl.MarketEligible
	})

	logger.Info("catalog-loaded",
		zap.String("path", path),
		zap.Int("templates", len(templates)),
		zap.Int("market-eligible", len(marketIDs)),
		zap.Int("currencies", len(file.Currencies)))

	return &FileCatalog{
		templates:        templates,
		basePrices:       file.BasePrices,
		staticEstimates:  file.StaticEstimates,
		dynamicEstimates: file.DynamicEstimates,
		categoryParents:  file.CategoryParents,
		globals:          file.Globals,
		currencies:       file.Currencies,
		marketIDs:        marketIDs,
		logger:           logger,
	}, nil
}

// Template resolves a template by id.
func (c *FileCatalog) Template(id string) (*types.Template, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return nil, &types.EngineError{
			Code:       types.ErrMissingTemplate,
			Message:    "unknown item template",
			TemplateID: id,
		}
	}
	return tpl, nil
}

// BasePrice returns the handbook price of a template in base currency.
func (c *FileCatalog) BasePrice(id string) (float64, bool) {
	price, ok := c.basePrices[id]
	return price, ok
}

// StaticEstimate returns the snapshot's static market price for a template,
// 0 when unknown.
func (c *FileCatalog) StaticEstimate(id string) float64 {
	return c.staticEstimates[id]
}

// DynamicEstimate returns the snapshot's rolling market price for a
// template, 0 when unknown.
func (c *FileCatalog) DynamicEstimate(id string) float64 {
	return c.dynamicEstimates[id]
}

// MarketTemplateIDs lists every template that may appear on the market.
func (c *FileCatalog) MarketTemplateIDs() []string {
	return c.marketIDs
}

// Globals returns the catalog-wide constants.
func (c *FileCatalog) Globals() *types.Globals {
	return c.globals
}

// Currencies lists the settlement currencies known to the catalog.
func (c *FileCatalog) Currencies() []types.Currency {
	return c.currencies
}

// CurrencyBasePrices maps each currency template id to its base price.
func (c *FileCatalog) CurrencyBasePrices() map[string]float64 {
	out := make(map[string]float64, len(c.currencies))
	for _, cur := range c.currencies {
		out[cur.TemplateID] = cur.BasePrice
	}
	return out
}

// IsOfCategory walks the category ancestry: a template matches a category
// when the category appears anywhere on its parent chain, or when the ids
// are equal.
func (c *FileCatalog) IsOfCategory(templateID, categoryID string) bool {
	if templateID == categoryID {
		return true
	}

	tpl, ok := c.templates[templateID]
	if !ok {
		return false
	}

	for _, cat := range tpl.Categories {
		for cat != "" {
			if cat == categoryID {
				return true
			}
			cat = c.categoryParents[cat]
		}
	}
	return false
}

// IsMarketEligible reports whether an instance of tpl may be listed on the
// flea market. foundInSession carries the caller's resolved provenance flag.
func (c *FileCatalog) IsMarketEligible(foundInSession bool, tpl *types.Template) bool {
	return foundInSession && tpl.MarketEligible
}

// DefaultPath returns the catalog snapshot path under a data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "catalog.json")
}
