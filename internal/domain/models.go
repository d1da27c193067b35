package domain

// Bank is a habitat bank: identity, authoritative boundary names, and
// location. Immutable within a solve.
type Bank struct {
	BankID   string  `json:"bank_id"`   // opaque identity
	BankKey  string  `json:"bank_key"`  // short human code
	BankName string  `json:"bank_name"`
	LPAName  string  `json:"lpa_name"` // authoritative local planning authority
	NCAName  string  `json:"nca_name"` // authoritative national character area
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Capacity float64 `json:"capacity"` // aggregate sellable capacity, used as a tertiary tie-break
}

// HabitatCatalogEntry describes one named habitat's ecological classification.
type HabitatCatalogEntry struct {
	HabitatName         string          `json:"habitat_name"` // unique key
	BroadGroup          string          `json:"broad_group"`  // ecological family, used at the Medium distinctiveness tier
	DistinctivenessName Distinctiveness `json:"distinctiveness_name"`
	UmbrellaType        UmbrellaType    `json:"umbrella_type"`
}

// StockEntry is a capacity-bearing resource: a specific row of sellable
// units at one bank for one habitat. Multiple stock rows for the same
// (bank, habitat) pair are distinct resources.
type StockEntry struct {
	BankID            string  `json:"bank_id"`
	HabitatName       string  `json:"habitat_name"`
	StockID           string  `json:"stock_id"`
	QuantityAvailable float64 `json:"quantity_available"`
}

// PricingKey identifies one priced row.
type PricingKey struct {
	BankID       string       `json:"bank_id"`
	HabitatName  string       `json:"habitat_name"`
	ContractSize ContractSize `json:"contract_size"`
	Tier         Tier         `json:"tier"`
}

// PricingEntry is one priced (bank, habitat, contract size, tier) row.
// Price is GBP per effective unit. Absence of a row for a key means the
// option is illegal.
type PricingEntry struct {
	PricingKey
	Price float64 `json:"price"`
}

// TradingRuleOverride lists, for one demand habitat, the exhaustive set of
// supply habitats legal to offset it — when present, it replaces the
// default ecological rules entirely.
type TradingRuleOverride struct {
	DemandHabitat   string          `json:"demand_habitat"`
	AllowedSupplies map[string]bool `json:"allowed_supplies"`
}

// DemandRow is one line of residual off-site demand.
type DemandRow struct {
	HabitatName   string       `json:"habitat_name"` // may be a synthetic "Net Gain (X%)" pseudo-habitat
	UnitsRequired float64      `json:"units_required"`
	UmbrellaType  UmbrellaType `json:"umbrella_type"`
}

// IsNetGain reports whether this demand row is a synthetic headline
// net-gain pseudo-demand rather than a named habitat.
func (d DemandRow) IsNetGain() bool {
	return isNetGainHabitat(d.HabitatName)
}

func isNetGainHabitat(name string) bool {
	return len(name) >= 8 && name[:8] == "Net Gain"
}

// PairPart describes one component of a paired option.
type PairPart struct {
	Habitat       string  `json:"habitat"`
	UnitPrice     float64 `json:"unit_price"`
	StockID       string  `json:"stock_id"`
	StockUseRatio float64 `json:"stock_use_ratio"` // share of effective units this part carries
}

// Option is one candidate (demand, bank, supply-habitat, tier, price)
// combination produced by the option builder. StockUse maps a stock_id to
// the raw-stock coefficient consumed per effective unit of demand satisfied.
type Option struct {
	DemandIdx      int
	BankID         string
	SupplyHabitat  string
	Tier           Tier
	UnitPrice      float64
	StockUse       map[string]float64
	AllocationType AllocationType
	PairedParts    []PairPart // populated only when AllocationType == AllocationPaired
}

// AllocationRow is one row of the solver's output.
type AllocationRow struct {
	DemandIdx      int            `json:"demand_idx"`
	OptionIdx      int            `json:"option_idx"`
	BankID         string         `json:"bank_id"`
	SupplyHabitat  string         `json:"supply_habitat"`
	StockID        string         `json:"stock_id,omitempty"` // the specific stock row consumed; empty for paired rows (see PairedParts)
	Tier           Tier           `json:"tier"`
	AllocationType AllocationType `json:"allocation_type"`
	UnitsSupplied  float64        `json:"units_supplied"`
	EffectiveUnits float64        `json:"effective_units"`
	Cost           float64        `json:"cost"`
	SRMDisplay     float64        `json:"srm_display"` // 1.0 for paired options; SRM(tier) for normal
	PairedParts    []PairPart     `json:"paired_parts,omitempty"`
}

// SiteHabitatTotal is the aggregated reporting view grouped by
// (bank_id, supply_habitat, tier, allocation_type).
type SiteHabitatTotal struct {
	BankID            string         `json:"bank_id"`
	SupplyHabitat     string         `json:"supply_habitat"`
	Tier              Tier           `json:"tier"`
	AllocationType    AllocationType `json:"allocation_type"`
	EffectiveUnits    float64        `json:"effective_units"`
	Cost              float64        `json:"cost"`
	WeightedUnitPrice float64        `json:"weighted_unit_price"` // cost / effective_units
}

// ReferenceTables is the immutable, read-only snapshot of everything the
// solver needs besides demand and context. It is loaded once per solve by a
// collaborator; the engine never mutates or persists it.
type ReferenceTables struct {
	Banks                 []Bank
	HabitatCatalog        []HabitatCatalogEntry
	Pricing               []PricingEntry
	Stock                 []StockEntry
	DistinctivenessLevels map[Distinctiveness]int // level_value, higher = more distinctive
	SRM                   SRM
	TradingRules          map[string]TradingRuleOverride // keyed by demand habitat name

	// derived indexes, built once at construction time so a ReferenceTables
	// value never needs lazy, shared mutable state at point-of-use.
	bankByID      map[string]Bank
	catalogByName map[string]HabitatCatalogEntry
	pricingByKey  map[PricingKey]PricingEntry
	stockByBank   map[string][]StockEntry
}
