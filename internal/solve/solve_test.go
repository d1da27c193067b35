package solve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/bngoptimiser/internal/allocator"
	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/geography"
	"github.com/aristath/bngoptimiser/internal/pricing"
	"github.com/aristath/bngoptimiser/internal/suo"
)

func levelsFixture() map[domain.Distinctiveness]int {
	return map[domain.Distinctiveness]int{
		domain.DistinctivenessVeryLow: 1, domain.DistinctivenessLow: 2, domain.DistinctivenessMedium: 3,
		domain.DistinctivenessHigh: 4, domain.DistinctivenessVeryHigh: 5,
	}
}

// TestSolveSingleLocalExactMatch reproduces spec.md scenario S1.
func TestSolveSingleLocalExactMatch(t *testing.T) {
	banks := []domain.Bank{{BankID: "A", LPAName: "X", NCAName: "Y", Capacity: 10}}
	catalog := []domain.HabitatCatalogEntry{{HabitatName: "Lowland meadows", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea}}
	stock := []domain.StockEntry{{BankID: "A", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	pr := []domain.PricingEntry{{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 20000}}
	ref, err := domain.NewReferenceTables(banks, catalog, pr, stock, levelsFixture(), domain.DefaultSRM(), nil)
	require.NoError(t, err)

	demand := []domain.DemandRow{{HabitatName: "Lowland meadows", UnitsRequired: 1.0, UmbrellaType: domain.UmbrellaArea}}
	ctx := Context{
		Target:       geography.Target{LPAName: "X", NCAName: "Y"},
		ContractSize: domain.ContractSmall,
		Solver:       allocator.DefaultParams(),
	}

	result, err := New().Solve(demand, ctx, ref)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1.0, result.Rows[0].UnitsSupplied)
	assert.Equal(t, 1.0, result.Rows[0].EffectiveUnits)
	assert.Equal(t, 20000.0, result.Rows[0].Cost)
	assert.Equal(t, 20000.0, result.TotalCost)
	assert.Equal(t, domain.ContractSmall, result.ContractSizeRequested)
	assert.Equal(t, domain.ContractSmall, result.ContractSizeApplied)
}

// TestSolveTierUpPromoterChangesLookupNotRecordedSize reproduces scenario S4.
func TestSolveTierUpPromoterChangesLookupNotRecordedSize(t *testing.T) {
	banks := []domain.Bank{{BankID: "A", LPAName: "X", NCAName: "Y"}}
	catalog := []domain.HabitatCatalogEntry{{HabitatName: "Lowland meadows", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea}}
	stock := []domain.StockEntry{{BankID: "A", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	pr := []domain.PricingEntry{
		{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 20000},
		{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: domain.ContractMedium, Tier: domain.TierLocal}, Price: 17000},
	}
	ref, err := domain.NewReferenceTables(banks, catalog, pr, stock, levelsFixture(), domain.DefaultSRM(), nil)
	require.NoError(t, err)

	demand := []domain.DemandRow{{HabitatName: "Lowland meadows", UnitsRequired: 1.0, UmbrellaType: domain.UmbrellaArea}}
	ctx := Context{
		Target:       geography.Target{LPAName: "X", NCAName: "Y"},
		ContractSize: domain.ContractSmall,
		Promoter:     pricing.PromoterDiscount{Kind: domain.PromoterTierUp},
		Solver:       allocator.DefaultParams(),
	}

	result, err := New().Solve(demand, ctx, ref)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 17000.0, result.Rows[0].Cost)
	assert.Equal(t, domain.ContractSmall, result.ContractSizeRequested, "the recorded quote size never changes")
	assert.Equal(t, domain.ContractMedium, result.ContractSizeApplied)
	assert.NotEmpty(t, result.Diagnostics)
}

func TestSolveAppliesSUOAfterAllocation(t *testing.T) {
	banks := []domain.Bank{{BankID: "A", LPAName: "X", NCAName: "Y"}}
	catalog := []domain.HabitatCatalogEntry{{HabitatName: "Lowland meadows", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea}}
	stock := []domain.StockEntry{{BankID: "A", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	pr := []domain.PricingEntry{{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 1000}}
	ref, err := domain.NewReferenceTables(banks, catalog, pr, stock, levelsFixture(), domain.DefaultSRM(), nil)
	require.NoError(t, err)

	demand := []domain.DemandRow{{HabitatName: "Lowland meadows", UnitsRequired: 10.0, UmbrellaType: domain.UmbrellaArea}}
	ctx := Context{
		Target:       geography.Target{LPAName: "X", NCAName: "Y"},
		ContractSize: domain.ContractSmall,
		Solver:       allocator.DefaultParams(),
		SUO: suo.Params{
			Enabled:     true,
			MaxFraction: 0.5,
		},
		OnsiteSurpluses: []suo.Surplus{{Habitat: "Lowland meadows", EffectiveUnits: 4, Distinctiveness: domain.DistinctivenessHigh}},
	}

	result, err := New().Solve(demand, ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, result.TotalCost)
	assert.InDelta(t, 0.2, result.SUO.DiscountFraction, 1e-9) // 2 usable / 10 effective units allocated
	assert.InDelta(t, 8000.0, result.SUO.QuoteAfterSUO, 1e-9)
}

func TestSolveSurfacesNoLegalOptionsAsError(t *testing.T) {
	banks := []domain.Bank{{BankID: "A", LPAName: "X", NCAName: "Y"}}
	catalog := []domain.HabitatCatalogEntry{{HabitatName: "Lowland meadows", DistinctivenessName: domain.DistinctivenessHigh, UmbrellaType: domain.UmbrellaArea}}
	stock := []domain.StockEntry{{BankID: "A", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	pr := []domain.PricingEntry{{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 1000}}
	ref, err := domain.NewReferenceTables(banks, catalog, pr, stock, levelsFixture(), domain.DefaultSRM(), nil)
	require.NoError(t, err)

	// Nothing in the catalogue matches this demand habitat at all.
	demand := []domain.DemandRow{{HabitatName: "Unknown reedbed", UnitsRequired: 1.0, UmbrellaType: domain.UmbrellaArea}}
	ctx := Context{
		Target:       geography.Target{LPAName: "X", NCAName: "Y"},
		ContractSize: domain.ContractSmall,
		Solver:       allocator.DefaultParams(),
	}

	_, err = New().Solve(demand, ctx, ref)
	require.Error(t, err)
	noLegalOpts, ok := err.(*domain.NoLegalOptionsError)
	require.True(t, ok)
	assert.Equal(t, 0, noLegalOpts.DemandIdx)
	require.NotEmpty(t, noLegalOpts.Rejected, "expected a sample of rejected candidates explaining the failure")
	assert.Equal(t, "A", noLegalOpts.Rejected[0].BankID)
	assert.Equal(t, "Lowland meadows", noLegalOpts.Rejected[0].HabitatName)
	assert.NotEmpty(t, noLegalOpts.Rejected[0].Reason)
}

func TestSolveFlagsWatercourseCatchmentCaveat(t *testing.T) {
	banks := []domain.Bank{{BankID: "A", LPAName: "X", NCAName: "Y"}}
	catalog := []domain.HabitatCatalogEntry{{HabitatName: "Canals", DistinctivenessName: domain.DistinctivenessMedium, UmbrellaType: domain.UmbrellaWatercourse}}
	stock := []domain.StockEntry{{BankID: "A", HabitatName: "Canals", StockID: "s1", QuantityAvailable: 10}}
	pr := []domain.PricingEntry{{PricingKey: domain.PricingKey{BankID: "A", HabitatName: "Canals", ContractSize: domain.ContractSmall, Tier: domain.TierLocal}, Price: 1000}}
	ref, err := domain.NewReferenceTables(banks, catalog, pr, stock, levelsFixture(), domain.DefaultSRM(), nil)
	require.NoError(t, err)

	demand := []domain.DemandRow{{HabitatName: "Canals", UnitsRequired: 1.0, UmbrellaType: domain.UmbrellaWatercourse}}
	ctx := Context{
		Target:       geography.Target{LPAName: "X", NCAName: "Y"},
		ContractSize: domain.ContractSmall,
		Solver:       allocator.DefaultParams(),
	}

	result, err := New().Solve(demand, ctx, ref)
	require.NoError(t, err)
	found := false
	for _, d := range result.Diagnostics {
		if len(d) >= 4 && d[:4] == "bank" {
			found = true
		}
	}
	assert.True(t, found, "expected a watercourse catchment-tiering caveat in diagnostics")
}
