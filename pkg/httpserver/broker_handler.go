package httpserver

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/stashbroker/broker/internal/decision"
	"github.com/stashbroker/broker/internal/flea"
	"github.com/stashbroker/broker/internal/trade"
	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// ClientConfig is the configuration subset the client mod reads on startup.
type ClientConfig struct {
	BrokerTraderID           string             `json:"brokerTraderId"`
	UseFlea                  bool               `json:"useFlea"`
	FleaIgnoreAttachments    bool               `json:"fleaIgnoreAttachments"`
	FleaIgnoreFoundInSession bool               `json:"fleaIgnoreFoundInSession"`
	FleaIgnorePlayerLevel    bool               `json:"fleaIgnorePlayerLevel"`
	TradersIgnoreUnlocked    bool               `json:"tradersIgnoreUnlocked"`
	UseClientOverrides       bool               `json:"useClientOverrides"`
	ProfitCommissionPercent  float64            `json:"profitCommissionPercent"`
	BuyRates                 map[string]float64 `json:"buyRates"` // currency tag -> rate
}

// BrokerHandler serves the broker API endpoints.
type BrokerHandler struct {
	clientCfg  ClientConfig
	traders    *decision.TraderIndex
	table      *flea.Table
	provider   *decision.ClientProvider
	controller *trade.Controller
	profile    *types.Profile
	stocker    trade.CurrencyStocker
	basePrices map[string]float64 // currency template id -> base price
	repGain    float64
	logger     *zap.Logger
}

// HandlerConfig holds broker handler dependencies.
type HandlerConfig struct {
	ClientConfig       ClientConfig
	Traders            *decision.TraderIndex
	Table              *flea.Table
	Provider           *decision.ClientProvider
	Controller         *trade.Controller
	Profile            *types.Profile
	Stocker            trade.CurrencyStocker
	CurrencyBasePrices map[string]float64
	RepGain            float64
	Logger             *zap.Logger
}

// NewBrokerHandler creates a new broker API handler.
func NewBrokerHandler(cfg *HandlerConfig) *BrokerHandler {
	return &BrokerHandler{
		clientCfg:  cfg.ClientConfig,
		traders:    cfg.Traders,
		table:      cfg.Table,
		provider:   cfg.Provider,
		controller: cfg.Controller,
		profile:    cfg.Profile,
		stocker:    cfg.Stocker,
		basePrices: cfg.CurrencyBasePrices,
		repGain:    cfg.RepGain,
		logger:     cfg.Logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleConfig handles GET /api/config requests.
func (h *BrokerHandler) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.clientCfg)
}

// HandleCurrencyBasePrices handles GET /api/currency-base-prices requests.
func (h *BrokerHandler) HandleCurrencyBasePrices(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.basePrices)
}

// HandleSupportedTraderIDs handles GET /api/supported-trader-ids requests.
func (h *BrokerHandler) HandleSupportedTraderIDs(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.traders.SupportedIDs())
}

// HandlePriceTable handles GET /api/price-table requests.
func (h *BrokerHandler) HandlePriceTable(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.table.Snapshot())
}

// RepGainResponse carries the market reputation gained per unit of sale
// price routed through the flea market.
type RepGainResponse struct {
	RepGain float64 `json:"repGain"`
}

// HandleRepGain handles GET /api/sell-rep-gain requests.
func (h *BrokerHandler) HandleRepGain(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, RepGainResponse{RepGain: h.repGain})
}

// HandleSellDecisions handles POST /api/sell-decisions requests. The body
// replaces the stored client decision map wholesale.
func (h *BrokerHandler) HandleSellDecisions(w http.ResponseWriter, r *http.Request) {
	var data map[string]types.ClientSellData
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.provider.Set(data)
	h.logger.Debug("sell-decisions-uploaded", zap.Int("count", len(data)))

	h.writeJSON(w, http.StatusOK, map[string]int{"stored": len(data)})
}

// HandleSell handles POST /api/sell requests: aggregates the batch, confirms
// one transaction per trader group, and returns the receipts.
func (h *BrokerHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req types.SellRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, "sell request has no items", http.StatusBadRequest)
		return
	}

	result, err := h.controller.ProcessSell(r.Context(), h.profile, &req)
	if err != nil {
		h.logger.Error("sell-request-failed", zap.Error(err))
		status := http.StatusInternalServerError
		if types.IsEngineError(err) {
			status = http.StatusUnprocessableEntity
		}
		h.writeError(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleBuyRedirect handles POST /api/buy-redirect requests: a currency
// purchase addressed to the broker is rewritten against the trader stocking
// that currency before the host executes it.
func (h *BrokerHandler) HandleBuyRedirect(w http.ResponseWriter, r *http.Request) {
	var req trade.BuyRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.controller.RedirectCurrencyPurchase(&req, h.stocker))
}

// writeJSON writes a JSON response.
func (h *BrokerHandler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *BrokerHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
