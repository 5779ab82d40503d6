package types

// SellDecision is the engine's verdict for one item: who buys it and at
// what exact price, commission and tax. Produced fresh per item, never
// mutated afterwards.
type SellDecision struct {
	TraderID         string  `json:"traderId"`
	Price            float64 `json:"price"`            // in the trader's currency
	PriceInBase      float64 `json:"priceInBase"`
	Commission       float64 `json:"commission"`       // in the trader's currency
	CommissionInBase float64 `json:"commissionInBase"`
	Tax              float64 `json:"tax"`              // flea market fee, base currency
}

// ClientSellData is an externally computed per-item decision, uploaded by a
// richer client-side context. When override mode is on it takes precedence
// over server-side computation.
type ClientSellData struct {
	ItemID           string  `json:"itemId"`
	TraderID         string  `json:"traderId"`
	Price            float64 `json:"price"`
	PriceInBase      float64 `json:"priceInBase"`
	Commission       float64 `json:"commission"`
	CommissionInBase float64 `json:"commissionInBase"`
	Tax              float64 `json:"tax"`
}

// SellRequestItem references one inventory item in a sell request.
type SellRequestItem struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// SellRequest is the inbound batch: every referenced item should be sold to
// whichever counterparty pays best.
type SellRequest struct {
	Action string            `json:"action"`
	Type   string            `json:"type"`
	Items  []SellRequestItem `json:"items"`
}

// GroupRequest is the outbound request body for one per-trader group,
// handed to the trade-confirmation collaborator.
type GroupRequest struct {
	Action   string            `json:"action"`
	Items    []SellRequestItem `json:"items"`
	Price    float64           `json:"price"` // net proceeds for the group
	TraderID string            `json:"tid"`
	Type     string            `json:"type"`
}

// Receipt is what the trade-confirmation collaborator returns for one
// confirmed group. The engine forwards it without interpreting internals.
type Receipt struct {
	ID       string `json:"id"`
	TraderID string `json:"traderId"`
	Raw      []byte `json:"raw,omitempty"`
}
