package aggregate

import (
	"github.com/stashbroker/broker/internal/decision"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// Engine resolves one item to a sell decision.
type Engine interface {
	DecideForItem(profile *types.Profile, item *types.Item) (*types.SellDecision, error)
}

// SellGroup accumulates the decisions routed to one trader. The group key
// may be a synthetic broker id; the outbound request always targets a real
// trader id.
type SellGroup struct {
	TraderID           string              `json:"traderId"`
	TraderName         string              `json:"traderName"`
	IsFleaMarket       bool                `json:"isFleaMarket"`
	TotalPrice         float64             `json:"totalPrice"`
	TotalTax           float64             `json:"totalTax"`
	TotalProfit        float64             `json:"totalProfit"`
	TotalProfitInBase  float64             `json:"totalProfitInBase"`
	Commission         float64             `json:"commission"`
	CommissionInBase   float64             `json:"commissionInBase"`
	TotalItemCount     int                 `json:"totalItemCount"`
	TotalStackCount    int                 `json:"totalStackCount"`
	FullItemCount      int                 `json:"fullItemCount"`
	Request            *types.GroupRequest `json:"request"`
}

// SkippedItem reports an item excluded from aggregation because no trader
// buys it. Reporting-only; the batch continues.
type SkippedItem struct {
	ItemID string `json:"itemId"`
	Reason string `json:"reason"`
}

// Result is a fully aggregated batch: one group per routing trader id, in
// first-assignment order, plus the skipped items.
type Result struct {
	Groups  map[string]*SellGroup `json:"groups"`
	Order   []string              `json:"order"`
	Skipped []SkippedItem         `json:"skipped"`
}

// Config holds aggregator configuration.
type Config struct {
	IgnoreAttachments bool // count stacks instead of walking item trees
	Logger            *zap.Logger
}

// Aggregator folds a batch of per-item sell decisions into per-trader
// transaction groups.
type Aggregator struct {
	engine  Engine
	traders *decision.TraderIndex
	cfg     Config
	logger  *zap.Logger
}

// New creates a new aggregator.
func New(cfg Config, engine Engine, traders *decision.TraderIndex) *Aggregator {
	return &Aggregator{
		engine:  engine,
		traders: traders,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// Aggregate resolves every requested item and folds the decisions into
// groups. Items with no eligible trader are reported and skipped; any
// other engine error aborts the batch before side effects happen.
func (a *Aggregator) Aggregate(profile *types.Profile, req *types.SellRequest) (*Result, error) {
	result := &Result{Groups: map[string]*SellGroup{}}

	for _, reqItem := range req.Items {
		item, ok := profile.ItemByID(reqItem.ID)
		if !ok {
			return nil, &types.EngineError{
				Code:    types.ErrMissingItem,
				Message: "sell request references an item the profile does not own",
				ItemID:  reqItem.ID,
			}
		}

		sellDecision, err := a.engine.DecideForItem(profile, item)
		if err != nil {
			if types.IsNoEligibleTrader(err) {
				a.logger.Warn("item-skipped-no-trader",
					zap.String("item-id", item.ID),
					zap.String("template-id", item.TemplateID))
				result.Skipped = append(result.Skipped, SkippedItem{
					ItemID: item.ID,
					Reason: err.Error(),
				})
				continue
			}
			return nil, err
		}

		a.fold(result, req, reqItem, item, sellDecision)
	}

	GroupsPerBatch.Observe(float64(len(result.Groups)))
	return result, nil
}

// fold adds one decision to its trader's group, creating the group on
// first assignment.
func (a *Aggregator) fold(result *Result, req *types.SellRequest, reqItem types.SellRequestItem, item *types.Item, d *types.SellDecision) {
	profit := d.Price - d.Tax - d.Commission
	profitInBase := d.PriceInBase - d.Tax - d.CommissionInBase
	stackCount := item.StackObjectsCount()

	fullCount := stackCount
	if !a.cfg.IgnoreAttachments {
		fullCount = item.FullCount()
	}

	group, exists := result.Groups[d.TraderID]
	if !exists {
		traderName := d.TraderID
		if meta, ok := a.traders.Get(d.TraderID); ok {
			traderName = meta.Name
		}

		// Synthetic group ids still transact against the real broker id.
		requestTraderID := d.TraderID
		if a.traders.IsBroker(d.TraderID) {
			requestTraderID = a.traders.BrokerID()
		}

		group = &SellGroup{
			TraderID:     d.TraderID,
			TraderName:   traderName,
			IsFleaMarket: a.traders.IsFleaMarket(d.TraderID),
			Request: &types.GroupRequest{
				Action:   req.Action,
				TraderID: requestTraderID,
				Type:     req.Type,
			},
		}
		result.Groups[d.TraderID] = group
		result.Order = append(result.Order, d.TraderID)
	}

	group.TotalPrice += d.Price
	group.TotalTax += d.Tax
	group.TotalProfit += profit
	group.TotalProfitInBase += profitInBase
	group.Commission += d.Commission
	group.CommissionInBase += d.CommissionInBase
	group.TotalItemCount++
	group.TotalStackCount += stackCount
	group.FullItemCount += fullCount

	group.Request.Items = append(group.Request.Items, reqItem)
	group.Request.Price += profit
}
