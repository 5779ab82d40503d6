package flea

import (
	"math"

	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// BuyoutPricer is the slice of the valuation pricer the fee calculator
// needs. The fee base ignores buyout restrictions and keeps summing past
// zero-valued parts: a fee must be quotable even for an otherwise-restricted
// or partially worthless bundle.
type BuyoutPricer interface {
	FeeBase(item *types.Item, count int) (float64, error)
}

// FeeCalculator computes the flea market's commission for a prospective
// sale price using the logarithmic tax curve.
type FeeCalculator struct {
	catalog Catalog
	pricer  BuyoutPricer
	logger  *zap.Logger
}

// NewFeeCalculator creates a new market fee calculator.
func NewFeeCalculator(catalog Catalog, pricer BuyoutPricer, logger *zap.Logger) *FeeCalculator {
	return &FeeCalculator{
		catalog: catalog,
		pricer:  pricer,
		logger:  logger,
	}
}

// Fee computes the market fee for selling the item bundle at
// requestedPrice. Degenerate inputs quote a zero fee without touching the
// curve. The result is rounded up to the next whole unit.
func (f *FeeCalculator) Fee(item *types.Item, profile *types.Profile, requestedPrice float64, unitCount int, sellAsSingleUnit bool) (float64, error) {
	if requestedPrice < 1 || unitCount < 1 {
		return 0, nil
	}

	base, err := f.pricer.FeeBase(item, unitCount)
	if err != nil {
		return 0, err
	}

	reqPrice := requestedPrice
	if !sellAsSingleUnit {
		reqPrice *= float64(unitCount)
	}

	globals := f.catalog.Globals()
	itemTaxRate := globals.ItemTaxRate / 100
	reqTaxRate := globals.RequirementTaxRate / 100

	// The 1.08 exponent penalizes the losing side of the base/requested
	// ratio, so over-asking grows the fee faster than under-asking shrinks
	// it.
	a := math.Log10(base / reqPrice)
	b := math.Log10(reqPrice / base)
	if reqPrice >= base {
		b = math.Pow(b, 1.08)
	} else {
		a = math.Pow(a, 1.08)
	}
	a = math.Pow(4, a)
	b = math.Pow(4, b)

	fee := base*itemTaxRate*a + reqPrice*reqTaxRate*b

	fee *= f.discountModifier(profile, globals)

	tpl, err := f.catalog.Template(item.TemplateID)
	if err != nil {
		return 0, err
	}
	fee *= tpl.FeeModifier

	if c, ok := item.Component(types.ComponentBuff); ok {
		modifier := globals.BuffPriceModifiers[c.BuffType]
		fee *= 1 + math.Abs(c.Points-1)*modifier
	}

	// An undefined curve (zero-value bundle) quotes no fee.
	if math.IsNaN(fee) || math.IsInf(fee, 0) {
		f.logger.Warn("fee-curve-undefined-quoting-zero",
			zap.String("item-id", item.ID),
			zap.Float64("base", base),
			zap.Float64("requested-price", reqPrice))
		return 0, nil
	}

	return math.Ceil(fee), nil
}

// discountModifier folds the seller's fee-reduction bonus, scaled by whole
// skill tiers. Skill progress truncates to whole 100-unit tiers before the
// boost applies.
func (f *FeeCalculator) discountModifier(profile *types.Profile, globals *types.Globals) float64 {
	if profile == nil {
		return 1
	}

	bonus := math.Abs(profile.FeeDiscountPercent)
	tiers := math.Trunc(profile.SkillProgress / 100)
	tierMultiplier := 1 + tiers*globals.SkillBoostPercent/100

	return 1 - bonus*tierMultiplier/100
}
