package valuation

import (
	"math"

	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// Catalog is the slice of the catalog collaborator the pricer needs.
type Catalog interface {
	Template(id string) (*types.Template, error)
	BasePrice(id string) (float64, bool)
	Globals() *types.Globals
}

// Pricer computes condition-adjusted buyout prices: the intrinsic value of
// an item bundle before any trader-specific discount.
type Pricer struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewPricer creates a new buyout pricer.
func NewPricer(catalog Catalog, logger *zap.Logger) *Pricer {
	return &Pricer{
		catalog: catalog,
		logger:  logger,
	}
}

// BuyoutPrice calculates the buyout price for an item and all of its
// children. count overrides the root item's stack count when positive;
// children always price at their own stack count. One ineligible child
// zeroes the whole bundle: a bundle with an unsellable part is unsellable.
func (p *Pricer) BuyoutPrice(item *types.Item, count int, ignoreRestrictions bool) (float64, error) {
	price := 0.0

	for _, it := range item.Flatten() {
		itemCount := 0
		if it.ID == item.ID {
			itemCount = count
		}

		single, err := p.SingleItemPrice(it, itemCount, ignoreRestrictions)
		if err != nil {
			return 0, err
		}
		if single == 0 {
			return 0, nil
		}
		price += single
	}

	return price, nil
}

// FeeBase sums the restriction-free price of an item and all of its
// children. Unlike BuyoutPrice a zero-valued part does not zero the sum:
// the market fee stays quotable on the remaining value even when part of
// the bundle is worthless.
func (p *Pricer) FeeBase(item *types.Item, count int) (float64, error) {
	sum := 0.0

	for _, it := range item.Flatten() {
		itemCount := 0
		if it.ID == item.ID {
			itemCount = count
		}

		single, err := p.SingleItemPrice(it, itemCount, true)
		if err != nil {
			return 0, err
		}
		sum += single
	}

	return sum, nil
}

// SingleItemPrice calculates the buyout price of one item without children:
// catalog base price adjusted by every attached condition component, times
// the stack count. Returns 0 when the item fails buyout restrictions.
func (p *Pricer) SingleItemPrice(item *types.Item, count int, ignoreRestrictions bool) (float64, error) {
	passes, err := p.PassesRestrictions(item)
	if err != nil {
		return 0, err
	}
	if !ignoreRestrictions && !passes {
		return 0, nil
	}

	if count < 1 {
		count = item.StackObjectsCount()
	}

	price, ok := p.catalog.BasePrice(item.TemplateID)
	if !ok {
		return 0, &types.EngineError{
			Code:       types.ErrMissingBasePrice,
			Message:    "no catalog base price for priced item",
			ItemID:     item.ID,
			TemplateID: item.TemplateID,
		}
	}

	tpl, err := p.catalog.Template(item.TemplateID)
	if err != nil {
		return 0, err
	}

	for _, kind := range types.ValuationOrder {
		component, hasComponent := item.Component(kind)
		if !hasComponent {
			continue
		}
		price, err = p.adjust(price, item, tpl, kind, component)
		if err != nil {
			return 0, err
		}
	}

	return price * float64(count), nil
}

// adjust applies one component's valuation formula to the running price.
// The switch is exhaustive over the closed kind set.
func (p *Pricer) adjust(price float64, item *types.Item, tpl *types.Template, kind types.ComponentKind, c types.Component) (float64, error) {
	err := validateComponent(item, kind, c)
	if err != nil {
		return 0, err
	}

	switch kind {
	case types.ComponentRepairable:
		// 0.01*0^maxPoints is 1% of base only at maxPoints == 0: a fully
		// broken item keeps residual value instead of pricing negative.
		step := 0.01 * math.Pow(0, c.MaxPoints)
		maxCeil := math.Ceil(c.MaxPoints)
		repairLoss := tpl.RepairCost * (maxCeil - math.Ceil(c.Points))
		return price*(maxCeil/c.TemplateMaxPoints+step) - repairLoss, nil

	case types.ComponentBuff:
		modifier := p.catalog.Globals().BuffPriceModifiers[c.BuffType]
		return price * (1 + math.Abs(c.Points-1)*modifier), nil

	case types.ComponentDogtag:
		// Points is the dogtag tier level.
		return price * c.Points, nil

	case types.ComponentKey:
		// max(...,1) guards division by zero when max and current uses
		// coincide at 1.
		return price / math.Max(c.TemplateMaxPoints*(c.TemplateMaxPoints-c.Points), 1), nil

	case types.ComponentResource, types.ComponentSideEffect:
		return price*0.1 + price*0.9/c.MaxPoints*c.Points, nil

	case types.ComponentMedkit, types.ComponentFoodDrink:
		return price / c.MaxPoints * c.Points, nil

	case types.ComponentRepairKit:
		return price / c.MaxPoints * math.Max(c.Points, 1), nil

	default:
		return 0, &types.EngineError{
			Code:    types.ErrMissingComponent,
			Message: "unhandled component kind " + kind.String(),
			ItemID:  item.ID,
		}
	}
}

// PassesRestrictions checks the buyout eligibility gates. Items without a
// gated component are always eligible.
func (p *Pricer) PassesRestrictions(item *types.Item) (bool, error) {
	globals := p.catalog.Globals()

	if c, ok := item.Component(types.ComponentMedkit); ok {
		err := validateComponent(item, types.ComponentMedkit, c)
		if err != nil {
			return false, err
		}
		return !(c.Points/c.MaxPoints < globals.MinMedsResource), nil
	}

	if c, ok := item.Component(types.ComponentFoodDrink); ok {
		err := validateComponent(item, types.ComponentFoodDrink, c)
		if err != nil {
			return false, err
		}
		return !(c.Points < globals.MinFoodDrinkResource), nil
	}

	if c, ok := item.Component(types.ComponentRepairable); ok {
		err := validateComponent(item, types.ComponentRepairable, c)
		if err != nil {
			return false, err
		}
		return !(c.MaxPoints < c.TemplateMaxPoints*globals.MinDurability ||
			c.Points < c.MaxPoints*globals.MinDurability), nil
	}

	return true, nil
}

// validateComponent rejects component data that contradicts the item's
// declared kinds. This is an internal-consistency failure, not a pricing
// condition: a flagged kind with no usable data means the inventory is
// corrupt.
func validateComponent(item *types.Item, kind types.ComponentKind, c types.Component) error {
	if c.Kind != kind || c.MaxPoints < 0 {
		return &types.EngineError{
			Code:       types.ErrMissingComponent,
			Message:    "component data contradicts declared kind " + kind.String(),
			ItemID:     item.ID,
			TemplateID: item.TemplateID,
		}
	}
	return nil
}
