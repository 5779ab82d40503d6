package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stashbroker/broker/pkg/types"
	"go.uber.org/zap"
)

const catalogFixture = `{
	"templates": [
		{"id": "rifle", "name": "Rifle", "categories": ["assault-rifle"], "marketEligible": true},
		{"id": "bandage", "name": "Bandage", "categories": ["meds"]},
		{"id": "usd", "name": "Dollars", "isCurrency": true}
	],
	"basePrices": {"rifle": 50000, "bandage": 2000},
	"staticEstimates": {"rifle": 60000},
	"dynamicEstimates": {"rifle": 65000},
	"categoryParents": {
		"assault-rifle": "weapon",
		"weapon": "item",
		"meds": "item"
	},
	"globals": {"minUserLevel": 15, "ratingIncreaseCount": 0.00001},
	"currencies": [
		{"tag": "USD", "templateId": "usd", "basePrice": 140}
	]
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func loadFixture(t *testing.T) *FileCatalog {
	t.Helper()
	cat, err := Load(writeFixture(t, "catalog.json", catalogFixture), zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cat
}

func TestLoad_Lookups(t *testing.T) {
	cat := loadFixture(t)

	tpl, err := cat.Template("rifle")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if tpl.Name != "Rifle" {
		t.Errorf("unexpected template name %s", tpl.Name)
	}

	_, err = cat.Template("missing")
	if types.EngineErrorCode(err) != types.ErrMissingTemplate {
		t.Errorf("expected MISSING_TEMPLATE, got %v", err)
	}

	price, ok := cat.BasePrice("rifle")
	if !ok || price != 50000 {
		t.Errorf("expected base price 50000, got %v %v", price, ok)
	}
	if _, ok := cat.BasePrice("missing"); ok {
		t.Error("expected no base price for unknown template")
	}

	if cat.StaticEstimate("rifle") != 60000 || cat.DynamicEstimate("rifle") != 65000 {
		t.Error("unexpected estimates")
	}
	if cat.StaticEstimate("missing") != 0 {
		t.Error("unknown estimate should be 0")
	}

	ids := cat.MarketTemplateIDs()
	if len(ids) != 1 || ids[0] != "rifle" {
		t.Errorf("expected only rifle market-eligible, got %v", ids)
	}

	if cat.Globals().MinUserLevel != 15 {
		t.Errorf("unexpected globals: %+v", cat.Globals())
	}

	prices := cat.CurrencyBasePrices()
	if prices["usd"] != 140 {
		t.Errorf("unexpected currency base prices: %v", prices)
	}
}

func TestLoad_RejectsMissingGlobals(t *testing.T) {
	path := writeFixture(t, "catalog.json", `{"templates": []}`)
	_, err := Load(path, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for catalog without globals")
	}
}

func TestIsOfCategory_AncestryWalk(t *testing.T) {
	cat := loadFixture(t)

	tests := []struct {
		name       string
		templateID string
		categoryID string
		expected   bool
	}{
		{name: "direct-category", templateID: "rifle", categoryID: "assault-rifle", expected: true},
		{name: "parent-category", templateID: "rifle", categoryID: "weapon", expected: true},
		{name: "grandparent-category", templateID: "rifle", categoryID: "item", expected: true},
		{name: "unrelated-category", templateID: "rifle", categoryID: "meds", expected: false},
		{name: "identity-match", templateID: "rifle", categoryID: "rifle", expected: true},
		{name: "unknown-template", templateID: "nope", categoryID: "weapon", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cat.IsOfCategory(tt.templateID, tt.categoryID)
			if got != tt.expected {
				t.Errorf("IsOfCategory(%s, %s) = %v, expected %v",
					tt.templateID, tt.categoryID, got, tt.expected)
			}
		})
	}
}

func TestIsMarketEligible(t *testing.T) {
	cat := loadFixture(t)
	tpl, _ := cat.Template("rifle")
	meds, _ := cat.Template("bandage")

	if !cat.IsMarketEligible(true, tpl) {
		t.Error("found-in-session eligible template should pass")
	}
	if cat.IsMarketEligible(false, tpl) {
		t.Error("not-found-in-session should fail")
	}
	if cat.IsMarketEligible(true, meds) {
		t.Error("ineligible template should fail regardless of provenance")
	}
}

func TestLoadTraders_CustomIDFilter(t *testing.T) {
	fixture := `{
		"traders": [
			{"id": "therapist", "name": "Therapist"},
			{"id": "prapor", "name": "Prapor"}
		],
		"currencyStock": {"usd": "peacekeeper"}
	}`
	path := writeFixture(t, "traders.json", fixture)

	all, err := LoadTraders(path, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all.Traders) != 2 {
		t.Errorf("expected both traders without filter, got %d", len(all.Traders))
	}

	filtered, err := LoadTraders(path, []string{"prapor", "unknown"}, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(filtered.Traders) != 1 || filtered.Traders[0].ID != "prapor" {
		t.Errorf("expected only prapor, got %v", filtered.Traders)
	}

	traderID, ok := filtered.StockingTrader("usd")
	if !ok || traderID != "peacekeeper" {
		t.Errorf("expected peacekeeper stocks usd, got %s %v", traderID, ok)
	}
}

func TestLoadListings_GroupsByRootTemplate(t *testing.T) {
	fixture := `{
		"listings": [
			{"id": "l1", "costInBase": 1000, "items": [{"id": "a", "templateId": "rifle"}]},
			{"id": "l2", "costInBase": 2000, "items": [{"id": "b", "templateId": "rifle"}]},
			{"id": "l3", "costInBase": 500, "items": [{"id": "c", "templateId": "bandage"}]},
			{"id": "empty", "costInBase": 9}
		]
	}`
	idx, err := LoadListings(writeFixture(t, "listings.json", fixture), zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := idx.ListingsForTemplate("rifle"); len(got) != 2 {
		t.Errorf("expected 2 rifle listings, got %d", len(got))
	}
	if got := idx.ListingsForTemplate("bandage"); len(got) != 1 {
		t.Errorf("expected 1 bandage listing, got %d", len(got))
	}
	if got := idx.ListingsForTemplate("missing"); got != nil {
		t.Errorf("expected nil for unknown template, got %v", got)
	}
}

func TestLoadProfile(t *testing.T) {
	fixture := `{
		"id": "p1",
		"level": 20,
		"traders": {"therapist": {"unlocked": true, "salesSum": 1000}},
		"items": [{"id": "i1", "templateId": "rifle"}]
	}`
	profile, err := LoadProfile(writeFixture(t, "profile.json", fixture), zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if profile.ID != "p1" || profile.Level != 20 {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if !profile.TraderUnlocked("therapist") {
		t.Error("expected therapist unlocked")
	}
	if profile.TraderUnlocked("prapor") {
		t.Error("unknown trader should be locked")
	}
	item, ok := profile.ItemByID("i1")
	if !ok || item.TemplateID != "rifle" {
		t.Errorf("expected item i1, got %v %v", item, ok)
	}
}
