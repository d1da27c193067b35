package allocator

import (
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// epsilons are the lexicographic tie-break weights for the secondary
// (proximity) and tertiary (bank capacity) objective terms. They are
// calibrated from the problem's own numeric bounds rather than hard-coded,
// so the primary objective always strictly dominates the secondary, and
// the secondary always strictly dominates the tertiary, no matter how
// large the costs or capacities involved are.
type epsilons struct {
	proximity float64
	capacity  float64
}

// calibrate scans the candidate options and banks for the worst-case price
// and capacity magnitudes, then derives epsilons small enough that no
// combination of secondary/tertiary terms can ever overturn a difference
// in the primary cost term.
func calibrate(options []domain.Option, banks []domain.Bank) epsilons {
	prices := make([]float64, 0, len(options))
	for _, o := range options {
		prices = append(prices, o.UnitPrice)
	}
	maxPrice := 1.0
	if len(prices) > 0 {
		maxPrice = floats.Max(prices)
	}

	capacities := make([]float64, 0, len(banks))
	for _, b := range banks {
		capacities = append(capacities, b.Capacity)
	}
	maxCapacity := 1.0
	if len(capacities) > 0 {
		maxCapacity = floats.Max(capacities)
	}
	if maxCapacity <= 0 {
		maxCapacity = 1.0
	}

	// The secondary term sums at most len(options) proximity ranks (each
	// 0..2); keep it several orders of magnitude below the smallest price
	// difference a solver would ever care about.
	proximityBudget := 2.0 * float64(len(options)+1)
	proximityEps := maxPrice / (proximityBudget * 1e9)
	if proximityEps <= 0 {
		proximityEps = 1e-9
	}

	// The tertiary term sums at most len(banks) capacities; keep it below
	// the smallest proximity difference the secondary term can produce.
	capacityBudget := maxCapacity * float64(len(banks)+1)
	capacityEps := proximityEps / (capacityBudget * 1e9)
	if capacityEps <= 0 {
		capacityEps = 1e-14
	}

	return epsilons{proximity: proximityEps, capacity: capacityEps}
}

// score combines cost, proximity and capacity into one lexicographically
// faithful scalar: lower is better.
func (e epsilons) score(cost, proximitySum, capacitySum float64) float64 {
	return cost + e.proximity*proximitySum - e.capacity*capacitySum
}
