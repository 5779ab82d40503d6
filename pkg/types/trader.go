package types

// ItemFilter is a category/id allow- or deny-list used by trader buy rules.
type ItemFilter struct {
	Categories []string `json:"categories"`
	IDs        []string `json:"ids"`
}

// TraderMeta is the per-counterparty metadata the decision engine compares.
// Lower BuyCoefficient means the trader pays closer to full buyout price.
// The two synthetic broker entries carry +Inf so a coefficient comparison
// can never select them.
type TraderMeta struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Currency           string     `json:"currency"` // currency tag, e.g. "RUB"
	BuyCoefficient     float64    `json:"buyCoefficient"`
	Buys               ItemFilter `json:"buys"`
	BuysProhibited     ItemFilter `json:"buysProhibited"`
	IgnoreRestrictions bool       `json:"ignoreRestrictions"` // fence-like: buys damaged goods
}

// TraderStatus is the seller's per-trader progression state.
type TraderStatus struct {
	Unlocked bool    `json:"unlocked"`
	SalesSum float64 `json:"salesSum"`
}

// Profile is a snapshot of the selling profile. The engine reads it when
// deciding; the trade controller mutates sales sums and market rating after
// confirmed sales.
type Profile struct {
	ID                  string                   `json:"id"`
	Level               int                      `json:"level"`
	MarketRating        float64                  `json:"marketRating"`
	MarketRatingGrowing bool                     `json:"marketRatingGrowing"`
	FeeDiscountPercent  float64                  `json:"feeDiscountPercent"` // market commission reduction bonus
	SkillProgress       float64                  `json:"skillProgress"`      // raw progress units, 100 per tier
	Traders             map[string]*TraderStatus `json:"traders"`
	Items               []*Item                  `json:"items"`

	index map[string]*Item
}

// ItemByID finds a root-level inventory item by id.
func (p *Profile) ItemByID(id string) (*Item, bool) {
	if p.index == nil {
		p.index = make(map[string]*Item, len(p.Items))
		for _, it := range p.Items {
			p.index[it.ID] = it
		}
	}
	it, ok := p.index[id]
	return it, ok
}

// TraderUnlocked reports whether the profile has unlocked the trader.
// Unknown traders are locked.
func (p *Profile) TraderUnlocked(traderID string) bool {
	st, ok := p.Traders[traderID]
	return ok && st.Unlocked
}
