package types

// Listing is one historical flea-market offer, sourced from the listing
// index collaborator. Read-only. The first item carries the condition used
// for ordering and filtering.
type Listing struct {
	ID                  string  `json:"id"`
	Items               []*Item `json:"items"`
	CostInBase          float64 `json:"costInBase"` // total cost, base-currency equivalent
	InstitutionalSeller bool    `json:"institutionalSeller"`
	SellAsSingleUnit    bool    `json:"sellAsSingleUnit"`
	Barter              bool    `json:"barter"` // requires a non-currency payment
}

// First returns the listing's leading item, or nil for an empty offer.
func (l *Listing) First() *Item {
	if len(l.Items) == 0 {
		return nil
	}
	return l.Items[0]
}
