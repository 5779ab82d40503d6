package trade

import (
	"go.uber.org/zap"
)

// BuyRequest is an inbound purchase from the broker's own stock.
type BuyRequest struct {
	TraderID   string `json:"tid"`
	TemplateID string `json:"templateId"`
	Count      int    `json:"count"`
}

// CurrencyStocker maps a currency template to the trader that actually
// stocks it.
type CurrencyStocker interface {
	StockingTrader(currencyTemplateID string) (string, bool)
}

// RedirectCurrencyPurchase rewrites a currency purchase addressed to the
// broker so it transacts against the trader stocking that currency. Other
// purchases pass through unchanged.
func (c *Controller) RedirectCurrencyPurchase(req *BuyRequest, stocker CurrencyStocker) *BuyRequest {
	if req == nil || !c.traders.IsBroker(req.TraderID) {
		return req
	}

	traderID, ok := stocker.StockingTrader(req.TemplateID)
	if !ok {
		return req
	}

	c.logger.Debug("currency-purchase-redirected",
		zap.String("template-id", req.TemplateID),
		zap.String("trader-id", traderID))

	redirected := *req
	redirected.TraderID = traderID
	return &redirected
}
