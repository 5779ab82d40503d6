package trade

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// LoopbackConfirmer is a Confirmer for running without a host trade
// pipeline: it accepts every group and issues a synthetic receipt. Useful
// for local runs and tests.
type LoopbackConfirmer struct {
	logger *zap.Logger
}

// NewLoopbackConfirmer creates a confirmer that accepts everything.
func NewLoopbackConfirmer(logger *zap.Logger) *LoopbackConfirmer {
	return &LoopbackConfirmer{logger: logger}
}

// ConfirmSell accepts the group and returns a synthetic receipt echoing
// the request body.
func (c *LoopbackConfirmer) ConfirmSell(_ context.Context, _ *types.Profile, req *types.GroupRequest) (*types.Receipt, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	receipt := &types.Receipt{
		ID:       uuid.New().String(),
		TraderID: req.TraderID,
		Raw:      raw,
	}

	c.logger.Debug("loopback-sell-confirmed",
		zap.String("receipt-id", receipt.ID),
		zap.String("trader-id", req.TraderID),
		zap.Int("items", len(req.Items)))

	return receipt, nil
}
