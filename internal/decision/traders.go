package decision

import (
	"math"

	"github.com/samber/lo"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// currencyExchangeSuffix extends the broker's trader id into the synthetic
// id used to group currency-exchange sales.
const currencyExchangeSuffix = "-currency-exchange"

// TraderIndex holds the immutable per-session trader metadata, including
// the two synthetic broker entries for flea sales and currency exchange.
// Iteration order is the collaborator's order, which also fixes the
// first-found tie-break between equally-coefficiented traders.
type TraderIndex struct {
	brokerID   string
	exchangeID string
	ordered    []*types.TraderMeta
	byID       map[string]*types.TraderMeta
}

// NewTraderIndex builds the index from collaborator metadata and appends
// the synthetic broker entries. The synthetic coefficients are +Inf so
// coefficient comparison can never pick them.
func NewTraderIndex(brokerID string, traders []*types.TraderMeta, logger *zap.Logger) *TraderIndex {
	exchangeID := brokerID + currencyExchangeSuffix

	ordered := make([]*types.TraderMeta, 0, len(traders)+2)
	for _, t := range traders {
		if t.ID == brokerID || t.ID == exchangeID {
			continue
		}
		ordered = append(ordered, t)
	}

	ordered = append(ordered,
		&types.TraderMeta{
			ID:             brokerID,
			Name:           "BROKER (Flea Market)",
			Currency:       types.BaseCurrencyTag,
			BuyCoefficient: math.Inf(1),
		},
		&types.TraderMeta{
			ID:             exchangeID,
			Name:           "BROKER (Currency Exchange)",
			Currency:       types.BaseCurrencyTag,
			BuyCoefficient: math.Inf(1),
		},
	)

	byID := make(map[string]*types.TraderMeta, len(ordered))
	for _, t := range ordered {
		byID[t.ID] = t
	}

	logger.Info("trader-index-built", zap.Int("traders", len(ordered)-2))

	return &TraderIndex{
		brokerID:   brokerID,
		exchangeID: exchangeID,
		ordered:    ordered,
		byID:       byID,
	}
}

// Get returns the metadata for a trader id.
func (x *TraderIndex) Get(id string) (*types.TraderMeta, bool) {
	t, ok := x.byID[id]
	return t, ok
}

// All returns every trader in iteration order, synthetic entries last.
func (x *TraderIndex) All() []*types.TraderMeta {
	return x.ordered
}

// SupportedIDs returns the real (non-synthetic) trader ids.
func (x *TraderIndex) SupportedIDs() []string {
	return lo.FilterMap(x.ordered, func(t *types.TraderMeta, _ int) (string, bool) {
		return t.ID, !x.IsBroker(t.ID)
	})
}

// BrokerID returns the trader id used for flea-market sales.
func (x *TraderIndex) BrokerID() string { return x.brokerID }

// ExchangeID returns the synthetic trader id used for currency exchange.
func (x *TraderIndex) ExchangeID() string { return x.exchangeID }

// IsFleaMarket reports whether id designates a broker flea-market sale.
func (x *TraderIndex) IsFleaMarket(id string) bool { return id == x.brokerID }

// IsBroker reports whether id is either of the broker's ids.
func (x *TraderIndex) IsBroker(id string) bool {
	return id == x.brokerID || id == x.exchangeID
}
