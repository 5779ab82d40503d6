package flea

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// topConditionFraction is the minimum fraction of a template's maximum
// condition a listing must keep to enter the average-price sample.
const topConditionFraction = 0.85

// Catalog is the slice of the catalog collaborator the estimator needs.
type Catalog interface {
	Template(id string) (*types.Template, error)
	StaticEstimate(id string) float64
	DynamicEstimate(id string) float64
	MarketTemplateIDs() []string
	Globals() *types.Globals
}

// ListingIndex is the historical-listing collaborator.
type ListingIndex interface {
	ListingsForTemplate(id string) []*types.Listing
}

// EstimatorConfig holds estimator configuration.
type EstimatorConfig struct {
	UseLowestPrice    bool // lowest-price strategy instead of top-condition average
	IgnoreAttachments bool // estimate from fully-assembled listings for bundle-capable templates
	Logger            *zap.Logger
}

// Estimator derives a representative flea-market price per item template
// from historical listings.
type Estimator struct {
	catalog  Catalog
	listings ListingIndex
	cfg      EstimatorConfig
	logger   *zap.Logger
}

// NewEstimator creates a new market price estimator.
func NewEstimator(cfg EstimatorConfig, catalog Catalog, listings ListingIndex) *Estimator {
	return &Estimator{
		catalog:  catalog,
		listings: listings,
		cfg:      cfg,
		logger:   cfg.Logger,
	}
}

// RepresentativePrice computes the representative market price for one
// template. With no usable listings it falls back to the catalog price
// estimates and never fails.
func (e *Estimator) RepresentativePrice(templateID string) (float64, error) {
	tpl, err := e.catalog.Template(templateID)
	if err != nil {
		return 0, err
	}

	valid := lo.Filter(e.listings.ListingsForTemplate(templateID), func(l *types.Listing, _ int) bool {
		return e.listingUsable(l, tpl)
	})

	if len(valid) == 0 {
		fallback := math.Max(e.catalog.StaticEstimate(templateID), e.catalog.DynamicEstimate(templateID))
		e.logger.Debug("no-usable-listings-fallback",
			zap.String("template-id", templateID),
			zap.Float64("fallback-price", fallback))
		EstimateFallbacksTotal.Inc()
		return fallback, nil
	}

	if e.cfg.UseLowestPrice {
		return lowestPrice(valid), nil
	}

	return topConditionAverage(tpl, valid), nil
}

// listingUsable applies the listing filters: no institutional sellers, no
// empty offers, no barter, and one consistent bundle interpretation for
// bundle-capable templates.
func (e *Estimator) listingUsable(l *types.Listing, tpl *types.Template) bool {
	if l.InstitutionalSeller || len(l.Items) == 0 || l.Barter {
		return false
	}

	if tpl.HasBundles {
		// Cannot mix bundled and standalone listings in one estimate.
		// Ignoring attachments prices the root at full operational value,
		// so the sample must be fully-assembled bundles; otherwise only
		// bare-root listings match what gets priced.
		if e.cfg.IgnoreAttachments && len(l.Items) == 1 {
			return false
		}
		if !e.cfg.IgnoreAttachments && len(l.Items) > 1 {
			return false
		}
		return true
	}

	// For plain templates, bulk single-unit offers distort per-unit cost.
	return !l.SellAsSingleUnit
}

// lowestPrice orders listings by descending max condition, then descending
// current condition, then ascending cost, and returns the first cost: the
// cheapest listing among the best-preserved.
func lowestPrice(listings []*types.Listing) float64 {
	sorted := make([]*types.Listing, len(listings))
	copy(sorted, listings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a := ConditionPoints(sorted[i].First())
		b := ConditionPoints(sorted[j].First())
		if a.MaxPoints != b.MaxPoints {
			return a.MaxPoints > b.MaxPoints
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return sorted[i].CostInBase < sorted[j].CostInBase
	})

	return sorted[0].CostInBase
}

// topConditionAverage keeps listings at >=85% of the template's maximum
// condition and averages their costs. An empty sample prices at 0.
func topConditionAverage(tpl *types.Template, listings []*types.Listing) float64 {
	top := lo.Filter(listings, func(l *types.Listing, _ int) bool {
		c := ConditionPoints(l.First())
		boundary := c.TemplateMaxPoints * topConditionFraction
		return c.Points >= boundary && c.MaxPoints >= boundary
	})

	if len(top) == 0 {
		return 0
	}

	return lo.SumBy(top, func(l *types.Listing) float64 { return l.CostInBase }) / float64(len(top))
}

// UnitPrice scales a template's representative price to a concrete item
// instance: condition-scaled against the template's factory maximum, then
// stack-scaled.
func UnitPrice(tablePrice float64, item *types.Item) float64 {
	c := ConditionPoints(item)
	return tablePrice * c.Points / c.TemplateMaxPoints * float64(item.StackObjectsCount())
}
