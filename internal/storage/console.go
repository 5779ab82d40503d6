package storage

import (
	"context"

	"github.com/stashbroker/broker/internal/aggregate"
	"go.uber.org/zap"
)

// ConsoleLedger logs confirmed sell groups instead of persisting them.
// Useful for local runs without a database.
type ConsoleLedger struct {
	logger *zap.Logger
}

// NewConsoleLedger creates a new console ledger.
func NewConsoleLedger(logger *zap.Logger) *ConsoleLedger {
	return &ConsoleLedger{logger: logger}
}

// StoreSellGroup logs one confirmed sell group.
func (c *ConsoleLedger) StoreSellGroup(_ context.Context, profileID, receiptID string, g *aggregate.SellGroup) error {
	c.logger.Info("sell-group",
		zap.String("receipt-id", receiptID),
		zap.String("profile-id", profileID),
		zap.String("trader-id", g.TraderID),
		zap.String("trader-name", g.TraderName),
		zap.Bool("is-flea-market", g.IsFleaMarket),
		zap.Float64("total-price", g.TotalPrice),
		zap.Float64("total-tax", g.TotalTax),
		zap.Float64("total-profit", g.TotalProfit),
		zap.Float64("commission", g.Commission),
		zap.Int("item-count", g.TotalItemCount),
		zap.Int("stack-count", g.TotalStackCount))

	return nil
}

// Close is a no-op for the console ledger.
func (c *ConsoleLedger) Close() error {
	return nil
}
