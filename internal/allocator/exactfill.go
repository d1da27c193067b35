package allocator

import (
	"math"
	"sort"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// bigM dominates every real price in the objective so the simplex always
// drives artificial variables to zero before it starts trading off real
// options against each other. Prices in this domain run into the tens of
// thousands at most, so 1e9 leaves many orders of magnitude of headroom
// without losing float64 precision on the real terms.
const bigM = 1e9

// simplexEpsilon is the tolerance used throughout the tableau for
// comparisons against zero — reduced-cost optimality, ratio-test
// feasibility, and the final artificial/structural value readout.
const simplexEpsilon = 1e-7

// maxSimplexSteps bounds the pivot count. Bland's anti-cycling rule already
// guarantees termination; this is a backstop so a pathological tableau
// reports "no candidate from this subset" instead of looping.
const maxSimplexSteps = 2000

// fillExact solves the fixed-bank-subset assignment exactly: minimise total
// cost subject to every demand row being met exactly and every stock row's
// capacity never being exceeded. This is the transportation-style linear
// program the branch-and-bound search evaluates each subset against —
// unlike fillGreedy's cheapest-first pass, every option can trade off
// against every other one touching the same demand or the same stock_id
// before any unit is committed, so two demands contending for one stock_id
// are weighed jointly instead of serving whichever sorts first. Solved via
// a two-phase-equivalent Big-M simplex (Bland's rule throughout, so it
// never cycles); the same fillResult shape as fillGreedy, so callers treat
// the two interchangeably.
func fillExact(options []domain.Option, demand []domain.DemandRow, ref *domain.ReferenceTables) fillResult {
	ordered := sortedOptions(options, ref)

	var eqRows []int // demand indices with a positive requirement, in order
	for i, d := range demand {
		if d.UnitsRequired > 0 {
			eqRows = append(eqRows, i)
		}
	}
	if len(eqRows) == 0 {
		return fillResult{banksUsed: make(map[string]bool)}
	}

	stockSeen := make(map[string]bool)
	var stockRows []string
	for _, o := range ordered {
		for stockID := range o.StockUse {
			if !stockSeen[stockID] {
				stockSeen[stockID] = true
				stockRows = append(stockRows, stockID)
			}
		}
	}
	sort.Strings(stockRows)

	n := len(ordered)
	meq := len(eqRows)
	mle := len(stockRows)
	m := meq + mle
	totalVars := n + meq + mle

	tab := make([][]float64, m+1)
	for i := range tab {
		tab[i] = make([]float64, totalVars+1)
	}

	costs := make([]float64, totalVars)
	for j, o := range ordered {
		costs[j] = o.UnitPrice
	}
	for j := n; j < n+meq; j++ {
		costs[j] = bigM
	}

	for r, demandIdx := range eqRows {
		row := tab[1+r]
		for j, o := range ordered {
			if o.DemandIdx == demandIdx {
				row[j] = 1
			}
		}
		row[n+r] = 1
		row[totalVars] = demand[demandIdx].UnitsRequired
	}

	stockCap := make(map[string]float64, len(stockRows))
	for _, s := range ref.Stock {
		stockCap[s.StockID] = s.QuantityAvailable
	}
	for r, stockID := range stockRows {
		row := tab[1+meq+r]
		for j, o := range ordered {
			if coeff, ok := o.StockUse[stockID]; ok {
				row[j] = coeff
			}
		}
		row[n+meq+r] = 1
		row[totalVars] = stockCap[stockID]
	}

	basis := make([]int, m)
	for r := range eqRows {
		basis[r] = n + r
	}
	for r := range stockRows {
		basis[meq+r] = n + meq + r
	}

	// Fold the Big-M basis costs out of the objective row so it starts
	// already holding correct reduced costs (standard canonical-form setup).
	obj := tab[0]
	copy(obj, costs)
	for i := 0; i < m; i++ {
		c := costs[basis[i]]
		if c == 0 {
			continue
		}
		row := tab[1+i]
		for j := 0; j <= totalVars; j++ {
			obj[j] -= c * row[j]
		}
	}

	for step := 0; step < maxSimplexSteps; step++ {
		enter := -1
		for j := 0; j < totalVars; j++ {
			if obj[j] < -simplexEpsilon {
				enter = j
				break // Bland's rule: lowest-index column with negative reduced cost
			}
		}
		if enter == -1 {
			break // optimal
		}

		leave := -1
		bestRatio := math.Inf(1)
		for i := 0; i < m; i++ {
			a := tab[1+i][enter]
			if a <= simplexEpsilon {
				continue
			}
			ratio := tab[1+i][totalVars] / a
			switch {
			case leave == -1 || ratio < bestRatio-simplexEpsilon:
				bestRatio, leave = ratio, i
			case ratio < bestRatio+simplexEpsilon && basis[i] < basis[leave]:
				leave = i // Bland's rule: smallest-index basic variable on a tied ratio
			}
		}
		if leave == -1 {
			break // unbounded — shouldn't happen with finite capacities; treat as no candidate
		}

		pivotRow := tab[1+leave]
		pivotVal := pivotRow[enter]
		for j := 0; j <= totalVars; j++ {
			pivotRow[j] /= pivotVal
		}
		for i := 0; i <= m; i++ {
			if i == 1+leave {
				continue
			}
			row := tab[i]
			factor := row[enter]
			if factor == 0 {
				continue
			}
			for j := 0; j <= totalVars; j++ {
				row[j] -= factor * pivotRow[j]
			}
		}
		basis[leave] = enter
	}

	xs := make([]float64, n)
	for i := 0; i < m; i++ {
		if basis[i] < n {
			xs[basis[i]] = tab[1+i][totalVars]
		}
	}

	return buildFillResult(ordered, xs, demand, ref)
}

// buildFillResult turns a vector of per-option effective-unit quantities
// into the same fillResult shape fillGreedy produces. A demand row whose
// options (including any artificial slack left over from an infeasible LP)
// didn't cover its full requirement shows up as a Shortfall, exactly as it
// would from a greedy pass — so callers never need to know which procedure
// produced the candidate.
func buildFillResult(ordered []domain.Option, xs []float64, demand []domain.DemandRow, ref *domain.ReferenceTables) fillResult {
	out := fillResult{banksUsed: make(map[string]bool)}
	covered := make([]float64, len(demand))

	for j, o := range ordered {
		x := xs[j]
		if x < domain.MinUnitDelivery {
			continue
		}
		row := buildRow(o, x, ref)
		out.rows = append(out.rows, row)
		out.totalCost += row.Cost
		out.proximitySum += x * float64(o.Tier.ProximityRank())
		out.banksUsed[o.BankID] = true
		covered[o.DemandIdx] += x
	}

	for b := range out.banksUsed {
		out.capacitySum += bankCapacity(ref, b)
	}

	for i, d := range demand {
		if short := d.UnitsRequired - covered[i]; short > domain.DemandCoverageEpsilon {
			out.shortfalls = append(out.shortfalls, domain.Shortfall{
				DemandIdx:     i,
				Habitat:       d.HabitatName,
				UnitsRequired: d.UnitsRequired,
				UnitsSupplied: covered[i],
				UnitsShort:    short,
			})
		}
	}

	return out
}
