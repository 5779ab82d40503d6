package decision

import (
	"math"

	"github.com/samber/lo"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// Catalog is the slice of the catalog collaborator the engine needs.
type Catalog interface {
	Template(id string) (*types.Template, error)
	BasePrice(id string) (float64, bool)
	IsOfCategory(templateID, categoryID string) bool
	IsMarketEligible(foundInSession bool, tpl *types.Template) bool
	Globals() *types.Globals
}

// BuyoutPricer values an item bundle before trader discounts.
type BuyoutPricer interface {
	BuyoutPrice(item *types.Item, count int, ignoreRestrictions bool) (float64, error)
	PassesRestrictions(item *types.Item) (bool, error)
}

// FeeCalculator quotes the flea market fee for a prospective sale.
type FeeCalculator interface {
	Fee(item *types.Item, profile *types.Profile, requestedPrice float64, unitCount int, sellAsSingleUnit bool) (float64, error)
}

// PriceTable resolves a template's representative market price.
type PriceTable interface {
	Price(templateID string) float64
}

// UnitPricer scales a table price to a concrete item instance.
type UnitPricer func(tablePrice float64, item *types.Item) float64

// Config holds decision engine configuration.
type Config struct {
	UseFlea                  bool
	FleaIgnoreAttachments    bool
	FleaIgnoreFoundInSession bool
	FleaIgnorePlayerLevel    bool
	TradersIgnoreUnlocked    bool
	UseClientOverrides       bool
	ProfitCommissionPercent  float64
	Logger                   *zap.Logger
}

// Engine resolves the best sell decision per item: the eligible fixed-price
// trader with the lowest coefficient, the flea market when it nets more, or
// the currency exchange for currency items.
type Engine struct {
	cfg      Config
	catalog  Catalog
	pricer   BuyoutPricer
	fee      FeeCalculator
	table    PriceTable
	unit     UnitPricer
	traders  *TraderIndex
	provider Provider
	logger   *zap.Logger

	currencyBasePrices map[string]float64 // currency template id -> base price
	buyRates           map[string]float64 // currency template id -> configured buy rate
	currencyByTag      map[string]string  // currency tag -> template id
}

// New creates a decision engine. buyRates is keyed by currency tag;
// currencies supplies base prices and the tag-to-template mapping.
func New(
	cfg Config,
	catalog Catalog,
	pricer BuyoutPricer,
	fee FeeCalculator,
	table PriceTable,
	unit UnitPricer,
	traders *TraderIndex,
	provider Provider,
	currencies []types.Currency,
	buyRates map[string]float64,
) *Engine {
	basePrices := make(map[string]float64, len(currencies))
	rates := make(map[string]float64, len(currencies))
	byTag := make(map[string]string, len(currencies))
	for _, c := range currencies {
		basePrices[c.TemplateID] = c.BasePrice
		byTag[c.Tag] = c.TemplateID
		if rate, ok := buyRates[c.Tag]; ok {
			rates[c.TemplateID] = rate
		} else {
			rates[c.TemplateID] = 1
		}
	}

	return &Engine{
		cfg:                cfg,
		catalog:            catalog,
		pricer:             pricer,
		fee:                fee,
		table:              table,
		unit:               unit,
		traders:            traders,
		provider:           provider,
		logger:             cfg.Logger,
		currencyBasePrices: basePrices,
		buyRates:           rates,
		currencyByTag:      byTag,
	}
}

// Traders exposes the engine's trader index.
func (e *Engine) Traders() *TraderIndex { return e.traders }

// CurrencyBasePrices returns the per-currency base prices snapshot.
func (e *Engine) CurrencyBasePrices() map[string]float64 {
	out := make(map[string]float64, len(e.currencyBasePrices))
	for k, v := range e.currencyBasePrices {
		out[k] = v
	}
	return out
}

// DecideForItem resolves the single best sell decision for one item.
// Returns a NO_ELIGIBLE_TRADER engine error when nobody buys the item; the
// caller reports it and drops the item from aggregation.
func (e *Engine) DecideForItem(profile *types.Profile, item *types.Item) (*types.SellDecision, error) {
	tpl, err := e.catalog.Template(item.TemplateID)
	if err != nil {
		return nil, err
	}

	if e.cfg.UseClientOverrides && e.provider != nil {
		if override, ok := e.provider.Decision(item.ID); ok {
			return e.fromOverride(override, tpl), nil
		}
		e.logger.Debug("no-client-sell-data", zap.String("item-id", item.ID))
	}

	if tpl.IsCurrency {
		return e.currencyExchangeDecision(item), nil
	}

	bestTrader, err := e.BestTraderForItem(profile, item)
	if err != nil {
		return nil, err
	}

	traderPrice, err := e.itemTraderPrice(item, bestTrader)
	if err != nil {
		return nil, err
	}

	fleaPrice := e.fleaPrice(item)

	if e.cfg.UseFlea && fleaPrice >= traderPrice && e.canSellOnFlea(item, tpl) && e.sellerCanUseFlea(profile) {
		return e.fleaDecision(profile, item, fleaPrice)
	}

	return e.traderDecision(bestTrader, traderPrice), nil
}

// fromOverride uses the client-supplied decision verbatim, re-tagging a
// flea-routed currency item as a currency exchange so the two operations
// group separately.
func (e *Engine) fromOverride(d *types.ClientSellData, tpl *types.Template) *types.SellDecision {
	traderID := d.TraderID
	if e.traders.IsFleaMarket(traderID) && tpl.IsCurrency {
		traderID = e.traders.ExchangeID()
	}
	DecisionsTotal.WithLabelValues("override").Inc()
	return &types.SellDecision{
		TraderID:         traderID,
		Price:            d.Price,
		PriceInBase:      d.PriceInBase,
		Commission:       d.Commission,
		CommissionInBase: d.CommissionInBase,
		Tax:              d.Tax,
	}
}

// currencyExchangeDecision routes a currency item to the synthetic exchange
// trader. No commission on exchanges.
func (e *Engine) currencyExchangeDecision(item *types.Item) *types.SellDecision {
	price := math.Round(e.currencyBasePrices[item.TemplateID] *
		e.buyRates[item.TemplateID] *
		float64(item.StackObjectsCount()))

	DecisionsTotal.WithLabelValues("currency-exchange").Inc()
	return &types.SellDecision{
		TraderID:    e.traders.ExchangeID(),
		Price:       price,
		PriceInBase: price,
	}
}

// BestTraderForItem finds the eligible trader with the lowest buy
// coefficient; ties break to the first one found in metadata order.
func (e *Engine) BestTraderForItem(profile *types.Profile, item *types.Item) (*types.TraderMeta, error) {
	var best *types.TraderMeta

	for _, trader := range e.traders.All() {
		ok, err := e.canBeSoldToTrader(profile, item, trader)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if best == nil || trader.BuyCoefficient < best.BuyCoefficient {
			best = trader
		}
	}

	if best == nil {
		NoTraderTotal.Inc()
		return nil, &types.EngineError{
			Code:       types.ErrNoEligibleTrader,
			Message:    "no trader buys this item",
			ItemID:     item.ID,
			TemplateID: item.TemplateID,
		}
	}

	return best, nil
}

// canBeSoldToTrader checks trader filters for the item and every child,
// buyout restrictions (unless the trader ignores them), and the profile's
// unlock status.
func (e *Engine) canBeSoldToTrader(profile *types.Profile, item *types.Item, trader *types.TraderMeta) (bool, error) {
	for _, it := range item.Flatten() {
		if !e.templateBuyable(it.TemplateID, trader) {
			return false, nil
		}
		if !trader.IgnoreRestrictions {
			passes, err := e.pricer.PassesRestrictions(it)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil
			}
		}
	}

	if !e.cfg.TradersIgnoreUnlocked && !profile.TraderUnlocked(trader.ID) {
		return false, nil
	}

	return true, nil
}

// templateBuyable applies the trader's allow- and deny-filters to one
// template.
func (e *Engine) templateBuyable(templateID string, trader *types.TraderMeta) bool {
	buys := lo.Contains(trader.Buys.IDs, templateID) ||
		lo.SomeBy(trader.Buys.Categories, func(cat string) bool {
			return e.catalog.IsOfCategory(templateID, cat)
		})

	prohibited := lo.Contains(trader.BuysProhibited.IDs, templateID) ||
		lo.SomeBy(trader.BuysProhibited.Categories, func(cat string) bool {
			return e.catalog.IsOfCategory(templateID, cat)
		})

	return buys && !prohibited
}

// itemTraderPrice is the buyout price of the bundle after the trader's
// coefficient markdown.
func (e *Engine) itemTraderPrice(item *types.Item, trader *types.TraderMeta) (float64, error) {
	price, err := e.pricer.BuyoutPrice(item, 0, trader.IgnoreRestrictions)
	if err != nil {
		return 0, err
	}
	return price * (1 - trader.BuyCoefficient/100), nil
}

// fleaPrice estimates the market price of the bundle; with attachments
// ignored only the root item is priced.
func (e *Engine) fleaPrice(item *types.Item) float64 {
	if e.cfg.FleaIgnoreAttachments {
		return e.unit(e.table.Price(item.TemplateID), item)
	}

	total := 0.0
	for _, it := range item.Flatten() {
		total += e.unit(e.table.Price(it.TemplateID), it)
	}
	return total
}

// canSellOnFlea checks market template eligibility, with the
// found-in-session flag overridable by config.
func (e *Engine) canSellOnFlea(item *types.Item, tpl *types.Template) bool {
	foundInSession := e.cfg.FleaIgnoreFoundInSession || item.FoundInSession
	return e.catalog.IsMarketEligible(foundInSession, tpl)
}

// sellerCanUseFlea checks the seller level gate, overridable by config.
func (e *Engine) sellerCanUseFlea(profile *types.Profile) bool {
	return e.cfg.FleaIgnorePlayerLevel || profile.Level >= e.catalog.Globals().MinUserLevel
}

// fleaDecision prices the flea route. Profits ceil, commissions and taxes
// round; this exact rounding is part of the contract.
func (e *Engine) fleaDecision(profile *types.Profile, item *types.Item, fleaPrice float64) (*types.SellDecision, error) {
	fee, err := e.fee.Fee(item, profile, fleaPrice, item.StackObjectsCount(), true)
	if err != nil {
		return nil, err
	}

	commission := math.Round(fleaPrice * e.cfg.ProfitCommissionPercent / 100)

	DecisionsTotal.WithLabelValues("flea").Inc()
	return &types.SellDecision{
		TraderID:         e.traders.BrokerID(),
		Price:            math.Ceil(fleaPrice),
		PriceInBase:      math.Ceil(fleaPrice),
		Commission:       commission,
		CommissionInBase: commission,
		Tax:              math.Round(fee),
	}, nil
}

// traderDecision prices the fixed-trader route. Profits floor after
// currency conversion; commissions round against the floored prices.
func (e *Engine) traderDecision(trader *types.TraderMeta, traderPrice float64) *types.SellDecision {
	price := math.Floor(e.convertToTraderCurrency(traderPrice, trader))
	priceInBase := math.Floor(traderPrice)

	DecisionsTotal.WithLabelValues("trader").Inc()
	return &types.SellDecision{
		TraderID:         trader.ID,
		Price:            price,
		PriceInBase:      priceInBase,
		Commission:       math.Round(price * e.cfg.ProfitCommissionPercent / 100),
		CommissionInBase: math.Round(priceInBase * e.cfg.ProfitCommissionPercent / 100),
	}
}

// convertToTraderCurrency converts a base-currency amount into the
// trader's settlement currency. Unknown traders or currencies default to
// the base currency.
func (e *Engine) convertToTraderCurrency(amount float64, trader *types.TraderMeta) float64 {
	if trader == nil || trader.Currency == "" || trader.Currency == types.BaseCurrencyTag {
		return amount
	}

	tplID, ok := e.currencyByTag[trader.Currency]
	if !ok {
		e.logger.Warn("unknown-trader-currency-defaulting-to-base",
			zap.String("trader-id", trader.ID),
			zap.String("currency", trader.Currency))
		return amount
	}

	basePrice := e.currencyBasePrices[tplID]
	if basePrice == 0 {
		return 0
	}
	return amount / basePrice
}
