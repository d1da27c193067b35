package allocator

import (
	"sort"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// fillResult is the outcome of one fill pass, greedy or exact.
type fillResult struct {
	rows          []domain.AllocationRow
	banksUsed     map[string]bool
	shortfalls    []domain.Shortfall
	totalCost     float64
	proximitySum  float64
	capacitySum   float64
}

// fillGreedy is the plain greedy fallback (the branch-and-bound search
// evaluates its subsets with fillExact instead): options are visited
// cheapest-first, and each is filled as far as its own stock limits, the
// demand's remaining requirement, and the bank cap (when maxBanks > 0)
// allow. It never backtracks — callers decide whether its output is
// acceptable.
func fillGreedy(options []domain.Option, demand []domain.DemandRow, ref *domain.ReferenceTables, maxBanks int) fillResult {
	ordered := sortedOptions(options, ref)

	remainingDemand := make([]float64, len(demand))
	for i, d := range demand {
		remainingDemand[i] = d.UnitsRequired
	}
	remainingStock := make(map[string]float64)
	for _, s := range ref.Stock {
		remainingStock[s.StockID] = s.QuantityAvailable
	}

	out := fillResult{banksUsed: make(map[string]bool)}

	for _, opt := range ordered {
		if remainingDemand[opt.DemandIdx] <= domain.DemandCoverageEpsilon {
			continue
		}
		if maxBanks > 0 && !out.banksUsed[opt.BankID] && len(out.banksUsed) >= maxBanks {
			continue
		}

		x := remainingDemand[opt.DemandIdx]
		for stockID, coeff := range opt.StockUse {
			if coeff <= 0 {
				continue
			}
			avail := remainingStock[stockID] / coeff
			if avail < x {
				x = avail
			}
		}
		if x < domain.MinUnitDelivery {
			continue
		}

		for stockID, coeff := range opt.StockUse {
			remainingStock[stockID] -= x * coeff
		}
		remainingDemand[opt.DemandIdx] -= x
		out.banksUsed[opt.BankID] = true

		row := buildRow(opt, x, ref)
		out.rows = append(out.rows, row)
		out.totalCost += row.Cost
		out.proximitySum += x * float64(opt.Tier.ProximityRank())
	}

	for b := range out.banksUsed {
		out.capacitySum += bankCapacity(ref, b)
	}

	for i, d := range demand {
		if remainingDemand[i] > domain.DemandCoverageEpsilon {
			out.shortfalls = append(out.shortfalls, domain.Shortfall{
				DemandIdx:     i,
				Habitat:       d.HabitatName,
				UnitsRequired: d.UnitsRequired,
				UnitsSupplied: d.UnitsRequired - remainingDemand[i],
				UnitsShort:    remainingDemand[i],
			})
		}
	}

	return out
}

func buildRow(opt domain.Option, effectiveUnits float64, ref *domain.ReferenceTables) domain.AllocationRow {
	srm := ref.SRM.Multiplier(opt.Tier)
	row := domain.AllocationRow{
		DemandIdx:      opt.DemandIdx,
		BankID:         opt.BankID,
		SupplyHabitat:  opt.SupplyHabitat,
		Tier:           opt.Tier,
		AllocationType: opt.AllocationType,
		EffectiveUnits: effectiveUnits,
		Cost:           effectiveUnits * opt.UnitPrice,
		PairedParts:    opt.PairedParts,
	}
	if opt.AllocationType == domain.AllocationPaired {
		row.UnitsSupplied = effectiveUnits
		row.SRMDisplay = 1.0
	} else {
		row.SRMDisplay = srm
		for stockID, coeff := range opt.StockUse {
			row.StockID = stockID
			row.UnitsSupplied = effectiveUnits * coeff // raw units = effective / SRM
		}
	}
	return row
}

func bankCapacity(ref *domain.ReferenceTables, bankID string) float64 {
	b, ok := ref.Bank(bankID)
	if !ok {
		return 0
	}
	return b.Capacity
}

// sortedOptions returns a copy of options in the one canonical order both
// fillGreedy and fillExact build from: cheapest first, then most-local,
// then highest-capacity bank, then bank_id/habitat — so a tie anywhere in
// either procedure resolves the same deterministic way.
func sortedOptions(options []domain.Option, ref *domain.ReferenceTables) []domain.Option {
	ordered := make([]domain.Option, len(options))
	copy(ordered, options)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.UnitPrice != b.UnitPrice {
			return a.UnitPrice < b.UnitPrice
		}
		if a.Tier.ProximityRank() != b.Tier.ProximityRank() {
			return a.Tier.ProximityRank() < b.Tier.ProximityRank()
		}
		capA, capB := bankCapacity(ref, a.BankID), bankCapacity(ref, b.BankID)
		if capA != capB {
			return capA > capB
		}
		if a.BankID != b.BankID {
			return a.BankID < b.BankID
		}
		return a.SupplyHabitat < b.SupplyHabitat
	})
	return ordered
}
