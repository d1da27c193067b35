package domain

import "sort"

// NewReferenceTables validates and indexes a raw snapshot, returning a
// ConfigError if anything required is missing, empty, or unresolved.
// Indexes are built once here rather than memoised lazily at point-of-use,
// so a ReferenceTables value is safe to share read-only across concurrent
// solves.
func NewReferenceTables(
	banks []Bank,
	catalog []HabitatCatalogEntry,
	pricing []PricingEntry,
	stock []StockEntry,
	distinctiveness map[Distinctiveness]int,
	srm SRM,
	tradingRules map[string]TradingRuleOverride,
) (*ReferenceTables, error) {
	cfgErr := &ConfigError{}

	if len(banks) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "Banks")
	}
	if len(catalog) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "HabitatCatalog")
	}
	if len(pricing) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "Pricing")
	}
	if len(stock) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "Stock")
	}
	if len(distinctiveness) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "DistinctivenessLevels")
	}
	if len(srm) == 0 {
		cfgErr.MissingTables = append(cfgErr.MissingTables, "SRM")
	}

	rt := &ReferenceTables{
		Banks:                 banks,
		HabitatCatalog:        catalog,
		Pricing:               pricing,
		Stock:                 stock,
		DistinctivenessLevels: distinctiveness,
		SRM:                   srm,
		TradingRules:          tradingRules,
		bankByID:              make(map[string]Bank, len(banks)),
		catalogByName:         make(map[string]HabitatCatalogEntry, len(catalog)),
		pricingByKey:          make(map[PricingKey]PricingEntry, len(pricing)),
		stockByBank:           make(map[string][]StockEntry),
	}

	for _, b := range banks {
		rt.bankByID[b.BankID] = b
	}
	for _, h := range catalog {
		rt.catalogByName[h.HabitatName] = h
		if _, ok := distinctiveness[h.DistinctivenessName]; !ok && h.DistinctivenessName != "" {
			cfgErr.UnknownDistinctness = append(cfgErr.UnknownDistinctness, string(h.DistinctivenessName))
		}
	}
	for _, p := range pricing {
		rt.pricingByKey[p.PricingKey] = p
		if _, ok := rt.bankByID[p.BankID]; !ok {
			cfgErr.UnresolvedBankIDs = append(cfgErr.UnresolvedBankIDs, p.BankID)
		}
	}
	for _, s := range stock {
		rt.stockByBank[s.BankID] = append(rt.stockByBank[s.BankID], s)
		if _, ok := rt.bankByID[s.BankID]; !ok {
			cfgErr.UnresolvedBankIDs = append(cfgErr.UnresolvedBankIDs, s.BankID)
		}
	}

	// deterministic ordering for every downstream iteration
	sort.Slice(rt.Banks, func(i, j int) bool { return rt.Banks[i].BankID < rt.Banks[j].BankID })
	for bankID := range rt.stockByBank {
		rows := rt.stockByBank[bankID]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].HabitatName != rows[j].HabitatName {
				return rows[i].HabitatName < rows[j].HabitatName
			}
			return rows[i].StockID < rows[j].StockID
		})
		rt.stockByBank[bankID] = rows
	}

	cfgErr.UnresolvedBankIDs = dedupeSorted(cfgErr.UnresolvedBankIDs)
	cfgErr.UnknownDistinctness = dedupeSorted(cfgErr.UnknownDistinctness)

	if cfgErr.HasIssues() {
		return nil, cfgErr
	}
	return rt, nil
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Bank resolves a bank_id, second return false when unknown.
func (rt *ReferenceTables) Bank(bankID string) (Bank, bool) {
	b, ok := rt.bankByID[bankID]
	return b, ok
}

// Habitat resolves a habitat_name against the catalog.
func (rt *ReferenceTables) Habitat(name string) (HabitatCatalogEntry, bool) {
	h, ok := rt.catalogByName[name]
	return h, ok
}

// Price looks up a priced row by key; ok is false when the option is illegal
// for lack of a price.
func (rt *ReferenceTables) Price(key PricingKey) (PricingEntry, bool) {
	p, ok := rt.pricingByKey[key]
	return p, ok
}

// StockForBank returns a bank's stock rows in deterministic order.
func (rt *ReferenceTables) StockForBank(bankID string) []StockEntry {
	return rt.stockByBank[bankID]
}

// DistinctivenessLevel returns the integer level_value for a tier name.
func (rt *ReferenceTables) DistinctivenessLevel(d Distinctiveness) (int, bool) {
	v, ok := rt.DistinctivenessLevels[d]
	return v, ok
}

// AtLeast reports whether distinctiveness a is >= b under the configured
// total order.
func (rt *ReferenceTables) AtLeast(a, b Distinctiveness) bool {
	la, aok := rt.DistinctivenessLevels[a]
	lb, bok := rt.DistinctivenessLevels[b]
	return aok && bok && la >= lb
}
