package types

// Template is the catalog definition for an item template id.
// Templates are immutable and shared between requests.
type Template struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	RepairCost        float64  `json:"repairCost"`        // per durability point
	FeeModifier       float64  `json:"feeModifier"`       // market commission modifier
	MaxDurability     float64  `json:"maxDurability"`     // factory maximum condition
	HasBundles        bool     `json:"hasBundles"`        // template supports attachment bundles (presets)
	IsCurrency        bool     `json:"isCurrency"`
	MarketEligible    bool     `json:"marketEligible"`    // may be listed on the flea market at all
	Categories        []string `json:"categories"`        // base classes for trader allow/deny filters
}

// Globals holds the catalog-wide numeric constants the engine needs.
type Globals struct {
	ItemTaxRate          float64            `json:"itemTaxRate"`          // percent, market fee curve "item" leg
	RequirementTaxRate   float64            `json:"requirementTaxRate"`   // percent, market fee curve "requirement" leg
	MinUserLevel         int                `json:"minUserLevel"`         // flea market level gate
	RatingIncreaseCount  float64            `json:"ratingIncreaseCount"`  // market reputation gained per unit of sale price
	MinMedsResource      float64            `json:"minMedsResource"`      // buyout gate, fraction
	MinFoodDrinkResource float64            `json:"minFoodDrinkResource"` // buyout gate, absolute points
	MinDurability        float64            `json:"minDurability"`        // buyout gate, fraction
	SkillBoostPercent    float64            `json:"skillBoostPercent"`    // fee discount boost per whole skill tier
	BuffPriceModifiers   map[string]float64 `json:"buffPriceModifiers"`   // buff type -> price modifier
}

// Currency describes one settlement currency known to the catalog.
type Currency struct {
	Tag        string  `json:"tag"`        // e.g. "USD"
	TemplateID string  `json:"templateId"` // the currency's own item template
	BasePrice  float64 `json:"basePrice"`  // price of one unit in base currency
}

// BaseCurrencyTag is the settlement currency everything is priced in.
const BaseCurrencyTag = "RUB"
