package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReferenceArgs() ([]Bank, []HabitatCatalogEntry, []PricingEntry, []StockEntry, map[Distinctiveness]int) {
	banks := []Bank{{BankID: "A", LPAName: "X", NCAName: "Y"}}
	catalog := []HabitatCatalogEntry{{HabitatName: "Lowland meadows", DistinctivenessName: DistinctivenessHigh, UmbrellaType: UmbrellaArea}}
	pricing := []PricingEntry{{PricingKey: PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: ContractSmall, Tier: TierLocal}, Price: 1}}
	stock := []StockEntry{{BankID: "A", HabitatName: "Lowland meadows", StockID: "s1", QuantityAvailable: 10}}
	levels := map[Distinctiveness]int{DistinctivenessHigh: 4}
	return banks, catalog, pricing, stock, levels
}

func TestNewReferenceTablesAcceptsAValidSnapshot(t *testing.T) {
	banks, catalog, pricing, stock, levels := validReferenceArgs()
	rt, err := NewReferenceTables(banks, catalog, pricing, stock, levels, DefaultSRM(), nil)
	require.NoError(t, err)

	b, ok := rt.Bank("A")
	require.True(t, ok)
	assert.Equal(t, "X", b.LPAName)

	p, ok := rt.Price(PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: ContractSmall, Tier: TierLocal})
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Price)
}

func TestNewReferenceTablesRejectsEmptyTables(t *testing.T) {
	_, err := NewReferenceTables(nil, nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Contains(t, cfgErr.MissingTables, "Banks")
	assert.Contains(t, cfgErr.MissingTables, "HabitatCatalog")
	assert.Contains(t, cfgErr.MissingTables, "Pricing")
	assert.Contains(t, cfgErr.MissingTables, "Stock")
	assert.Contains(t, cfgErr.MissingTables, "DistinctivenessLevels")
	assert.Contains(t, cfgErr.MissingTables, "SRM")
}

func TestNewReferenceTablesRejectsUnresolvedBankID(t *testing.T) {
	banks, catalog, pricing, stock, levels := validReferenceArgs()
	pricing = append(pricing, PricingEntry{PricingKey: PricingKey{BankID: "ghost", HabitatName: "Lowland meadows", ContractSize: ContractSmall, Tier: TierLocal}, Price: 1})

	_, err := NewReferenceTables(banks, catalog, pricing, stock, levels, DefaultSRM(), nil)
	require.Error(t, err)
	cfgErr := err.(*ConfigError)
	assert.Contains(t, cfgErr.UnresolvedBankIDs, "ghost")
}

func TestNewReferenceTablesRejectsUnknownDistinctiveness(t *testing.T) {
	banks, catalog, pricing, stock, levels := validReferenceArgs()
	catalog = append(catalog, HabitatCatalogEntry{HabitatName: "Mystery habitat", DistinctivenessName: "Extremely High", UmbrellaType: UmbrellaArea})

	_, err := NewReferenceTables(banks, catalog, pricing, stock, levels, DefaultSRM(), nil)
	require.Error(t, err)
	cfgErr := err.(*ConfigError)
	assert.Contains(t, cfgErr.UnknownDistinctness, "Extremely High")
}

func TestAtLeastRespectsTotalOrder(t *testing.T) {
	banks, catalog, pricing, stock, _ := validReferenceArgs()
	levels := map[Distinctiveness]int{
		DistinctivenessVeryLow: 1, DistinctivenessLow: 2, DistinctivenessMedium: 3,
		DistinctivenessHigh: 4, DistinctivenessVeryHigh: 5,
	}
	rt, err := NewReferenceTables(banks, catalog, pricing, stock, levels, DefaultSRM(), nil)
	require.NoError(t, err)

	assert.True(t, rt.AtLeast(DistinctivenessHigh, DistinctivenessMedium))
	assert.False(t, rt.AtLeast(DistinctivenessLow, DistinctivenessMedium))
	assert.True(t, rt.AtLeast(DistinctivenessMedium, DistinctivenessMedium))
}

func TestStockForBankIsDeterministicallyOrdered(t *testing.T) {
	banks := []Bank{{BankID: "A"}}
	catalog := []HabitatCatalogEntry{
		{HabitatName: "Lowland meadows", DistinctivenessName: DistinctivenessHigh, UmbrellaType: UmbrellaArea},
		{HabitatName: "Mixed scrub", DistinctivenessName: DistinctivenessMedium, UmbrellaType: UmbrellaArea},
	}
	stock := []StockEntry{
		{BankID: "A", HabitatName: "Mixed scrub", StockID: "z", QuantityAvailable: 1},
		{BankID: "A", HabitatName: "Lowland meadows", StockID: "b", QuantityAvailable: 1},
		{BankID: "A", HabitatName: "Lowland meadows", StockID: "a", QuantityAvailable: 1},
	}
	pricing := []PricingEntry{{PricingKey: PricingKey{BankID: "A", HabitatName: "Lowland meadows", ContractSize: ContractSmall, Tier: TierLocal}, Price: 1}}
	levels := map[Distinctiveness]int{DistinctivenessHigh: 4, DistinctivenessMedium: 3}

	rt, err := NewReferenceTables(banks, catalog, pricing, stock, levels, DefaultSRM(), nil)
	require.NoError(t, err)

	rows := rt.StockForBank("A")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "z"}, []string{rows[0].StockID, rows[1].StockID, rows[2].StockID})
}

func TestDemandRowIsNetGainPseudoHabitat(t *testing.T) {
	assert.True(t, DemandRow{HabitatName: "Net Gain (10%)"}.IsNetGain())
	assert.False(t, DemandRow{HabitatName: "Lowland meadows"}.IsNetGain())
}
