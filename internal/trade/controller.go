package trade

import (
	"context"
	"fmt"

	"github.com/stashbroker/broker/internal/aggregate"
	"github.com/stashbroker/broker/internal/decision"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// Confirmer is the host trade-confirmation collaborator. Its errors are
// host-side: callers may retry the whole batch, unlike engine errors.
type Confirmer interface {
	ConfirmSell(ctx context.Context, profile *types.Profile, req *types.GroupRequest) (*types.Receipt, error)
}

// Ledger records confirmed sell groups. Failures are logged, never fatal.
type Ledger interface {
	StoreSellGroup(ctx context.Context, profileID, receiptID string, group *aggregate.SellGroup) error
	Close() error
}

// Aggregator folds a sell request into per-trader groups.
type Aggregator interface {
	Aggregate(profile *types.Profile, req *types.SellRequest) (*aggregate.Result, error)
}

// Globals exposes the catalog constants the controller needs.
type Globals interface {
	Globals() *types.Globals
}

// Config holds trade controller configuration.
type Config struct {
	ProfitCommissionPercent float64
	Logger                  *zap.Logger
}

// Controller runs a sell batch end to end: aggregate, confirm each group
// with the host, apply profile side effects, record to the ledger. The
// full result set is built before any confirmation, so an engine failure
// never leaves partial totals behind.
type Controller struct {
	cfg        Config
	aggregator Aggregator
	traders    *decision.TraderIndex
	confirmer  Confirmer
	ledger     Ledger
	globals    Globals
	logger     *zap.Logger
}

// NewController creates a new trade controller.
func NewController(cfg Config, aggregator Aggregator, traders *decision.TraderIndex, confirmer Confirmer, ledger Ledger, globals Globals) *Controller {
	return &Controller{
		cfg:        cfg,
		aggregator: aggregator,
		traders:    traders,
		confirmer:  confirmer,
		ledger:     ledger,
		globals:    globals,
		logger:     cfg.Logger,
	}
}

// Result is the outcome of one processed sell batch.
type Result struct {
	Groups   map[string]*aggregate.SellGroup `json:"groups"`
	Order    []string                        `json:"order"`
	Skipped  []aggregate.SkippedItem         `json:"skipped"`
	Receipts []*types.Receipt                `json:"receipts"`
}

// ProcessSell aggregates the batch and confirms one transaction per group.
func (c *Controller) ProcessSell(ctx context.Context, profile *types.Profile, req *types.SellRequest) (*Result, error) {
	aggregated, err := c.aggregator.Aggregate(profile, req)
	if err != nil {
		return nil, fmt.Errorf("aggregate sell request: %w", err)
	}

	result := &Result{
		Groups:  aggregated.Groups,
		Order:   aggregated.Order,
		Skipped: aggregated.Skipped,
	}

	for _, traderID := range aggregated.Order {
		group := aggregated.Groups[traderID]

		receipt, err := c.confirmer.ConfirmSell(ctx, profile, group.Request)
		if err != nil {
			return nil, fmt.Errorf("confirm sell to %s: %w", group.Request.TraderID, err)
		}
		result.Receipts = append(result.Receipts, receipt)

		c.applySideEffects(profile, traderID, group)
		c.record(ctx, profile, receipt, group)

		GroupsConfirmedTotal.Inc()
		c.logger.Info("sell-group-confirmed",
			zap.String("trader", group.TraderName),
			zap.Int("items", group.FullItemCount),
			zap.Float64("profit", group.TotalProfit),
			zap.Float64("profit-in-base", group.TotalProfitInBase),
			zap.Float64("tax", group.TotalTax),
			zap.Float64("commission-in-base", group.CommissionInBase))
	}

	return result, nil
}

// applySideEffects mutates the profile the way a confirmed sale does:
// trader sales sums grow by the broker's commission, flea sales grow the
// market rating and the hidden flea trader's sales sum.
func (c *Controller) applySideEffects(profile *types.Profile, groupTraderID string, group *aggregate.SellGroup) {
	if !c.traders.IsBroker(groupTraderID) {
		if st, ok := profile.Traders[group.Request.TraderID]; ok {
			// Sales sum growth stays unaffected by the commission cut.
			st.SalesSum += group.Commission
		}
		return
	}

	if group.IsFleaMarket {
		// Tax does not count towards market reputation; total price does.
		gain := group.TotalPrice * c.globals.Globals().RatingIncreaseCount
		profile.MarketRatingGrowing = true
		profile.MarketRating += gain

		if st, ok := profile.Traders[fleaTraderID]; ok {
			st.SalesSum += group.TotalPrice
		}

		c.logger.Info("market-rating-increased",
			zap.Float64("gain", gain),
			zap.Float64("rating", profile.MarketRating))
	}
}

// fleaTraderID is the hidden trader whose sales sum tracks flea activity.
const fleaTraderID = "ragfair"

// record writes the confirmed group to the ledger; failures are non-fatal.
func (c *Controller) record(ctx context.Context, profile *types.Profile, receipt *types.Receipt, group *aggregate.SellGroup) {
	if c.ledger == nil {
		return
	}

	err := c.ledger.StoreSellGroup(ctx, profile.ID, receipt.ID, group)
	if err != nil {
		c.logger.Error("ledger-store-failed",
			zap.String("receipt-id", receipt.ID),
			zap.Error(err))
	}
}
