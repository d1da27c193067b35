package allocator

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// Collapse merges allocation rows that share a (bank_id, supply_habitat,
// tier, allocation_type) key into one reporting row, summing effective
// units and cost.
func Collapse(rows []domain.AllocationRow) []domain.AllocationRow {
	type key struct {
		bank, habitat string
		tier          domain.Tier
		kind          domain.AllocationType
	}
	byKey := make(map[key]*domain.AllocationRow)
	var order []key

	for _, r := range rows {
		k := key{r.BankID, r.SupplyHabitat, r.Tier, r.AllocationType}
		if existing, ok := byKey[k]; ok {
			existing.UnitsSupplied += r.UnitsSupplied
			existing.EffectiveUnits += r.EffectiveUnits
			existing.Cost += r.Cost
			continue
		}
		cp := r
		byKey[k] = &cp
		order = append(order, k)
	}

	out := make([]domain.AllocationRow, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BankID != out[j].BankID {
			return out[i].BankID < out[j].BankID
		}
		return out[i].SupplyHabitat < out[j].SupplyHabitat
	})
	return out
}

// SiteHabitatTotals groups allocation rows by (bank_id, supply_habitat,
// tier, allocation_type) and reports a weighted-average effective unit
// price per group, weighted by each contributing row's effective units —
// the grouping a single collapsed row already gives the same number
// algebraically, but grouping the raw rows directly is what lets the
// weighting actually vary when a group has more than one contributor.
func SiteHabitatTotals(rows []domain.AllocationRow) []domain.SiteHabitatTotal {
	type key struct {
		bank, habitat string
		tier          domain.Tier
		kind          domain.AllocationType
	}
	type group struct {
		prices, weights []float64
		effective, cost float64
	}
	groups := make(map[key]*group)
	var order []key

	for _, r := range rows {
		if r.EffectiveUnits <= 0 {
			continue
		}
		k := key{r.BankID, r.SupplyHabitat, r.Tier, r.AllocationType}
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.prices = append(g.prices, r.Cost/r.EffectiveUnits)
		g.weights = append(g.weights, r.EffectiveUnits)
		g.effective += r.EffectiveUnits
		g.cost += r.Cost
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].bank != order[j].bank {
			return order[i].bank < order[j].bank
		}
		return order[i].habitat < order[j].habitat
	})

	out := make([]domain.SiteHabitatTotal, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, domain.SiteHabitatTotal{
			BankID:            k.bank,
			SupplyHabitat:     k.habitat,
			Tier:              k.tier,
			AllocationType:    k.kind,
			EffectiveUnits:    g.effective,
			Cost:              g.cost,
			WeightedUnitPrice: stat.Mean(g.prices, g.weights),
		})
	}
	return out
}
