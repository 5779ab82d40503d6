package valuation

import (
	"math"
	"testing"

	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

// mockCatalog is an in-package catalog stub to avoid import cycles.
type mockCatalog struct {
	templates map[string]*types.Template
	prices    map[string]float64
	globals   *types.Globals
}

func (m *mockCatalog) Template(id string) (*types.Template, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, &types.EngineError{Code: types.ErrMissingTemplate, TemplateID: id}
	}
	return tpl, nil
}

func (m *mockCatalog) BasePrice(id string) (float64, bool) {
	p, ok := m.prices[id]
	return p, ok
}

func (m *mockCatalog) Globals() *types.Globals {
	return m.globals
}

func testCatalog() *mockCatalog {
	return &mockCatalog{
		templates: map[string]*types.Template{
			"plain":  {ID: "plain", Name: "Plain Item", FeeModifier: 1},
			"rifle":  {ID: "rifle", Name: "Rifle", RepairCost: 10, MaxDurability: 100, FeeModifier: 1},
			"medkit": {ID: "medkit", Name: "Medkit", FeeModifier: 1},
		},
		prices: map[string]float64{
			"plain":  1000,
			"rifle":  50000,
			"medkit": 20000,
		},
		globals: &types.Globals{
			MinMedsResource:      0.3,
			MinFoodDrinkResource: 10,
			MinDurability:        0.6,
			BuffPriceModifiers:   map[string]float64{"rec-speed": 2},
		},
	}
}

func TestSingleItemPrice_ComponentFormulas(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	tests := []struct {
		name     string
		item     *types.Item
		expected float64
	}{
		{
			name:     "no-components-base-price",
			item:     &types.Item{ID: "i1", TemplateID: "plain"},
			expected: 1000,
		},
		{
			name: "stack-multiplies-base",
			item: &types.Item{ID: "i2", TemplateID: "plain", StackCount: 5},
			// base * stack
			expected: 5000,
		},
		{
			name: "repairable-full-condition",
			item: &types.Item{ID: "i3", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 100, MaxPoints: 100, TemplateMaxPoints: 100},
			}},
			// 50000 * (100/100 + 0) - 10*(100-100) = 50000
			expected: 50000,
		},
		{
			name: "repairable-worn-condition",
			item: &types.Item{ID: "i4", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 60, MaxPoints: 80, TemplateMaxPoints: 100},
			}},
			// 50000 * (80/100) - 10*(80-60) = 40000 - 200 = 39800
			expected: 39800,
		},
		{
			name: "repairable-zero-max-keeps-residual",
			item: &types.Item{ID: "i5", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 0, MaxPoints: 0, TemplateMaxPoints: 100},
			}},
			// 50000 * (0/100 + 0.01) - 0 = 500
			expected: 500,
		},
		{
			name: "buff-scales-by-modifier",
			item: &types.Item{ID: "i6", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentBuff: {Kind: types.ComponentBuff, Points: 1.5, BuffType: "rec-speed"},
			}},
			// 1000 * (1 + |1.5-1|*2) = 2000
			expected: 2000,
		},
		{
			name: "dogtag-level-multiplies",
			item: &types.Item{ID: "i7", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentDogtag: {Kind: types.ComponentDogtag, Points: 42},
			}},
			expected: 42000,
		},
		{
			name: "key-uses-divides",
			item: &types.Item{ID: "i8", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentKey: {Kind: types.ComponentKey, Points: 3, TemplateMaxPoints: 5},
			}},
			// 1000 / max(5*(5-3), 1) = 100
			expected: 100,
		},
		{
			name: "key-single-use-guard",
			item: &types.Item{ID: "i9", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentKey: {Kind: types.ComponentKey, Points: 1, TemplateMaxPoints: 1},
			}},
			// max(1*(1-1), 1) = 1, full price survives
			expected: 1000,
		},
		{
			name: "resource-floor-plus-linear",
			item: &types.Item{ID: "i10", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentResource: {Kind: types.ComponentResource, Points: 50, MaxPoints: 100},
			}},
			// 1000*0.1 + 1000*0.9*50/100 = 100 + 450 = 550
			expected: 550,
		},
		{
			name: "side-effect-same-as-resource",
			item: &types.Item{ID: "i11", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentSideEffect: {Kind: types.ComponentSideEffect, Points: 0, MaxPoints: 100},
			}},
			// depleted keeps the 10% floor
			expected: 100,
		},
		{
			name: "medkit-linear-ratio",
			item: &types.Item{ID: "i12", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
				types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 150, MaxPoints: 300},
			}},
			// 20000 * 150/300 = 10000
			expected: 10000,
		},
		{
			name: "repair-kit-zero-points-floors-at-one",
			item: &types.Item{ID: "i13", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairKit: {Kind: types.ComponentRepairKit, Points: 0, MaxPoints: 100},
			}},
			// 1000 / 100 * max(0,1) = 10
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricer.SingleItemPrice(tt.item, 0, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSingleItemPrice_MissingBasePrice(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	_, err := pricer.SingleItemPrice(&types.Item{ID: "i1", TemplateID: "unknown"}, 0, true)
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
	if types.EngineErrorCode(err) != types.ErrMissingBasePrice {
		t.Errorf("expected MISSING_BASE_PRICE, got %v", err)
	}
}

func TestSingleItemPrice_RestrictionsZeroPrice(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	// Medkit at 20% resource, gate is 30%.
	depleted := &types.Item{ID: "m1", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
		types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 60, MaxPoints: 300},
	}}

	got, err := pricer.SingleItemPrice(depleted, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for restricted item, got %v", got)
	}

	// The same item prices normally with restrictions ignored.
	got, err = pricer.SingleItemPrice(depleted, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == 0 {
		t.Error("expected non-zero price with restrictions ignored")
	}
}

func TestBuyoutPrice_BundleSumsChildren(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	bundle := &types.Item{
		ID:         "root",
		TemplateID: "plain",
		Children: []*types.Item{
			{ID: "c1", TemplateID: "plain"},
			{ID: "c2", TemplateID: "plain", StackCount: 2},
		},
	}

	got, err := pricer.BuyoutPrice(bundle, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 + 1000 + 2000
	if got != 4000 {
		t.Errorf("expected 4000, got %v", got)
	}
}

func TestBuyoutPrice_IneligibleChildZeroesBundle(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	bundle := &types.Item{
		ID:         "root",
		TemplateID: "plain",
		Children: []*types.Item{
			{ID: "c1", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
				types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 10, MaxPoints: 300},
			}},
		},
	}

	got, err := pricer.BuyoutPrice(bundle, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for bundle with restricted child, got %v", got)
	}
}

func TestFeeBase_WorthlessChildKeepsRemainingValue(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	// Medkit at 0 points prices to 0 even with restrictions ignored.
	bundle := &types.Item{
		ID:         "root",
		TemplateID: "plain",
		Children: []*types.Item{
			{ID: "c1", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
				types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 0, MaxPoints: 300},
			}},
		},
	}

	got, err := pricer.FeeBase(bundle, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1000 {
		t.Errorf("expected fee base 1000 from the root alone, got %v", got)
	}

	// The buyout sum keeps its zero short-circuit for the same bundle.
	got, err = pricer.BuyoutPrice(bundle, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected buyout 0 for bundle with worthless child, got %v", got)
	}
}

func TestSingleItemPrice_RepairableMonotonicInPoints(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	prev := math.Inf(-1)
	for points := 0.0; points <= 80; points++ {
		item := &types.Item{ID: "i1", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
			types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: points, MaxPoints: 80, TemplateMaxPoints: 100},
		}}

		got, err := pricer.SingleItemPrice(item, 0, true)
		if err != nil {
			t.Fatalf("unexpected error at points=%v: %v", points, err)
		}
		if got < prev {
			t.Fatalf("price dropped from %v to %v when points rose to %v", prev, got, points)
		}
		prev = got
	}
}

func TestBuyoutPrice_CountOverridesRootOnly(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	bundle := &types.Item{
		ID:         "root",
		TemplateID: "plain",
		StackCount: 1,
		Children: []*types.Item{
			{ID: "c1", TemplateID: "plain", StackCount: 2},
		},
	}

	got, err := pricer.BuyoutPrice(bundle, 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// root 3*1000, child keeps its own 2*1000
	if got != 5000 {
		t.Errorf("expected 5000, got %v", got)
	}
}

func TestPassesRestrictions(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	tests := []struct {
		name     string
		item     *types.Item
		expected bool
	}{
		{
			name:     "no-gated-component-always-passes",
			item:     &types.Item{ID: "i1", TemplateID: "plain"},
			expected: true,
		},
		{
			name: "medkit-above-gate",
			item: &types.Item{ID: "i2", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
				types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 100, MaxPoints: 300},
			}},
			// 100/300 = 0.33 >= 0.3
			expected: true,
		},
		{
			name: "medkit-below-gate",
			item: &types.Item{ID: "i3", TemplateID: "medkit", Components: map[types.ComponentKind]types.Component{
				types.ComponentMedkit: {Kind: types.ComponentMedkit, Points: 60, MaxPoints: 300},
			}},
			expected: false,
		},
		{
			name: "food-below-absolute-gate",
			item: &types.Item{ID: "i4", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
				types.ComponentFoodDrink: {Kind: types.ComponentFoodDrink, Points: 5, MaxPoints: 60},
			}},
			expected: false,
		},
		{
			name: "repairable-max-points-too-degraded",
			item: &types.Item{ID: "i5", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 50, MaxPoints: 50, TemplateMaxPoints: 100},
			}},
			// max 50 < 100*0.6
			expected: false,
		},
		{
			name: "repairable-points-too-low",
			item: &types.Item{ID: "i6", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 40, MaxPoints: 80, TemplateMaxPoints: 100},
			}},
			// 40 < 80*0.6
			expected: false,
		},
		{
			name: "repairable-healthy",
			item: &types.Item{ID: "i7", TemplateID: "rifle", Components: map[types.ComponentKind]types.Component{
				types.ComponentRepairable: {Kind: types.ComponentRepairable, Points: 70, MaxPoints: 80, TemplateMaxPoints: 100},
			}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricer.PassesRestrictions(tt.item)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSingleItemPrice_CorruptComponentData(t *testing.T) {
	pricer := NewPricer(testCatalog(), zap.NewNop())

	item := &types.Item{ID: "i1", TemplateID: "plain", Components: map[types.ComponentKind]types.Component{
		types.ComponentResource: {Kind: types.ComponentMedkit, Points: 50, MaxPoints: 100},
	}}

	_, err := pricer.SingleItemPrice(item, 0, true)
	if types.EngineErrorCode(err) != types.ErrMissingComponent {
		t.Errorf("expected MISSING_COMPONENT for kind mismatch, got %v", err)
	}
}
