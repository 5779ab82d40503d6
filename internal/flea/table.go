package flea

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Table is the price lookup table: template id to representative market
// price. It is read-mostly shared state; regeneration builds a complete
// fresh mapping and publishes it with a single swap, so readers never see
// a partially rebuilt table.
type Table struct {
	mu          sync.RWMutex
	prices      map[string]float64
	generatedAt time.Time
}

// NewTable creates an empty price lookup table.
func NewTable() *Table {
	return &Table{prices: map[string]float64{}}
}

// Price returns the cached representative price for a template, 0 if the
// template is not in the table.
func (t *Table) Price(templateID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prices[templateID]
}

// Snapshot returns a copy of the full mapping.
func (t *Table) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]float64, len(t.prices))
	for k, v := range t.prices {
		out[k] = v
	}
	return out
}

// Replace swaps in a freshly generated mapping.
func (t *Table) Replace(prices map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prices = prices
	t.generatedAt = time.Now()
}

// Len returns the number of templates in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.prices)
}

// PriceSource is anything that can produce a representative price per
// template. Both Estimator and CachedEstimator satisfy it.
type PriceSource interface {
	RepresentativePrice(templateID string) (float64, error)
}

// Builder generates the full lookup table from the catalog's
// market-eligible template set.
type Builder struct {
	catalog Catalog
	source  PriceSource
	logger  *zap.Logger
}

// NewBuilder creates a new table builder.
func NewBuilder(catalog Catalog, source PriceSource, logger *zap.Logger) *Builder {
	return &Builder{
		catalog: catalog,
		source:  source,
		logger:  logger,
	}
}

// Generate computes representative prices for every market-eligible
// template.
func (b *Builder) Generate() (map[string]float64, error) {
	start := time.Now()
	ids := b.catalog.MarketTemplateIDs()
	prices := make(map[string]float64, len(ids))

	for _, id := range ids {
		price, err := b.source.RepresentativePrice(id)
		if err != nil {
			return nil, err
		}
		prices[id] = price
	}

	elapsed := time.Since(start)
	TableGenerationSeconds.Observe(elapsed.Seconds())
	TableSize.Set(float64(len(prices)))
	b.logger.Info("price-table-generated",
		zap.Int("templates", len(prices)),
		zap.Duration("elapsed", elapsed))

	return prices, nil
}
