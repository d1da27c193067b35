package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/bngoptimiser/internal/domain"
)

func newTestCatalog(t *testing.T) *domain.ReferenceTables {
	t.Helper()
	catalog := []domain.HabitatCatalogEntry{
		{HabitatName: "Lowland meadows", BroadGroup: "Grassland", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Other neutral grassland", BroadGroup: "Grassland", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Mixed scrub", BroadGroup: "Scrub", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Modified grassland", BroadGroup: "Grassland", DistinctivenessName: domain.DistinctivenessLow, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Felled woodland", BroadGroup: "Woodland", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Lowland mixed deciduous", BroadGroup: "Woodland", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea},
		{HabitatName: "Native hedgerow", BroadGroup: "Hedgerow", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaHedgerow},
		{HabitatName: "Species-poor hedgerow", BroadGroup: "Hedgerow", DistinctivenessName: domain.DistinctivenessLow, UmbrellaType: domain.UmbrellaHedgerow},
		{HabitatName: "Canals", BroadGroup: "Watercourse", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaWatercourse},
		{HabitatName: "Ditches", BroadGroup: "Watercourse", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaWatercourse},
		{HabitatName: "Rivers and streams", BroadGroup: "Watercourse", DistinctivenessName: domain.DistinctivenessVeryHigh, UmbrellaType: domain.UmbrellaWatercourse},
	}
	bank := []domain.Bank{{BankID: "b1"}}
	stock := []domain.StockEntry{{BankID: "b1", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	pricing := []domain.PricingEntry{{PricingKey: domain.PricingKey{BankID: "b1", HabitatName: "Lowland meadows", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 1}}
	levels := map[domain.Distinctiveness]int{
		domain.DistinctivenessVeryLow:  1,
		domain.DistinctivenessLow:      2,
		domain.DistinctivenessMedium:   3,
		domain.DistinctivenessHigh:     4,
		domain.DistinctivenessVeryHigh: 5,
	}
	rt, err := domain.NewReferenceTables(bank, catalog, pricing, stock, levels, domain.DefaultSRM(), nil)
	require.NoError(t, err)
	return rt
}

func TestAreaLegal(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{Catalog: rt}

	cases := []struct {
		name     string
		demand   string
		supply   string
		expected bool
	}{
		{"High demand requires like-for-like", "Lowland meadows", "Lowland meadows", true},
		{"High demand rejects lower distinctiveness substitute", "Lowland meadows", "Other neutral grassland", false},
		{"Medium demand accepts higher distinctiveness any group", "Felled woodland", "Lowland mixed deciduous", true},
		{"Medium demand rejects same-tier Grassland supply for Woodland demand", "Felled woodland", "Other neutral grassland", false},
		{"Medium demand rejects same-tier Scrub supply for Woodland demand", "Felled woodland", "Mixed scrub", false},
		{"Low demand accepts anything at or above low", "Modified grassland", "Lowland meadows", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := rt.Habitat(tc.demand)
			s, _ := rt.Habitat(tc.supply)
			assert.Equal(t, tc.expected, areaLegal(ctx, d, s))
		})
	}
}

func TestWatercourseVeryHighNeverLegal(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{Catalog: rt}
	d, _ := rt.Habitat("Rivers and streams")
	s, _ := rt.Habitat("Rivers and streams")
	assert.False(t, watercourseLegal(ctx, d, s), "Very High watercourse demand must never be legal")
}

func TestWatercourseCanalsDitchesNotInterchangeable(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{Catalog: rt}
	d, _ := rt.Habitat("Canals")
	s, _ := rt.Habitat("Ditches")
	assert.False(t, watercourseLegal(ctx, d, s), "canals cannot offset ditches even though both are Medium")
}

func TestExplicitOverrideIsExhaustive(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{
		Catalog: rt,
		TradingRules: map[string]domain.TradingRuleOverride{
			"Felled woodland": {
				DemandHabitat:   "Felled woodland",
				AllowedSupplies: map[string]bool{"Lowland mixed deciduous": true},
			},
		},
	}
	assert.True(t, Legal(ctx, "Felled woodland", domain.UmbrellaArea, "Lowland mixed deciduous"))
	// Without the override this would also be legal (medium -> high, any group),
	// so use a supply the defaults would also accept (Lowland meadows, High) but
	// the override list excludes, to show the override is exhaustive.
	assert.False(t, Legal(ctx, "Felled woodland", domain.UmbrellaArea, "Lowland meadows"))
}

func TestCrossUmbrellaNeverLegal(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{Catalog: rt}
	assert.False(t, Legal(ctx, "Lowland meadows", domain.UmbrellaArea, "Native hedgerow"))
}

func TestNetGainPseudoDemandUsesRowUmbrella(t *testing.T) {
	rt := newTestCatalog(t)
	ctx := Context{Catalog: rt}
	assert.True(t, Legal(ctx, "Net Gain (10%)", domain.UmbrellaArea, "Modified grassland"))
	assert.False(t, Legal(ctx, "Net Gain (10%)", domain.UmbrellaHedgerow, "Modified grassland"))
}

func TestNetGainAreaAcceptsAnyAtOrAboveLow(t *testing.T) {
	rt := newTestCatalog(t)
	// Net Gain pseudo-demand is not in the catalog; simulate via Legal's
	// fallback path by checking netGainLegal directly against a known supply.
	s, _ := rt.Habitat("Modified grassland")
	assert.True(t, netGainLegal(domain.UmbrellaArea, Context{Catalog: rt}, s))
}
