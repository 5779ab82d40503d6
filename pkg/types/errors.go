package types

import (
	"errors"
	"fmt"
)

// EngineError is a pricing-engine-side failure. Callers use it to tell
// engine failures (reject the single item or the request) apart from host
// trade-confirmation failures (retry the whole batch).
type EngineError struct {
	Code       string
	Message    string
	ItemID     string
	TemplateID string
}

func (e *EngineError) Error() string {
	switch {
	case e.ItemID != "":
		return fmt.Sprintf("%s: %s (item %s)", e.Code, e.Message, e.ItemID)
	case e.TemplateID != "":
		return fmt.Sprintf("%s: %s (template %s)", e.Code, e.Message, e.TemplateID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Engine error codes.
const (
	ErrMissingBasePrice = "MISSING_BASE_PRICE"     // no catalog price for a priced item: data-integrity, fatal for the request
	ErrMissingTemplate  = "MISSING_TEMPLATE"       // unknown template id: data-integrity, fatal for the request
	ErrMissingComponent = "MISSING_COMPONENT_DATA" // component data contradicts the item's declared kinds: fatal
	ErrMissingItem      = "MISSING_ITEM"           // sell request references an item the profile doesn't own: fatal
	ErrNoEligibleTrader = "NO_ELIGIBLE_TRADER"     // non-fatal: report and exclude the item from aggregation
)

// NewEngineError creates an EngineError with the given code and message.
func NewEngineError(code, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// IsEngineError reports whether err is (or wraps) an EngineError.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// EngineErrorCode extracts the engine error code, or "" for host errors.
func EngineErrorCode(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNoEligibleTrader reports the one non-fatal engine condition: no
// counterparty buys the item.
func IsNoEligibleTrader(err error) bool {
	return EngineErrorCode(err) == ErrNoEligibleTrader
}
