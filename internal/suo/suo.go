// Package suo implements the Surplus Uplift Offset: a post-allocation
// percentage discount funded by eligible on-site surplus, applied only to
// the non-admin-fee portion of a quote.
package suo

import "github.com/aristath/bngoptimiser/internal/domain"

// Surplus is one on-site habitat surplus available to fund a discount.
type Surplus struct {
	Habitat         string                 `json:"habitat"`
	EffectiveUnits  float64                `json:"effective_units"`
	Distinctiveness domain.Distinctiveness `json:"distinctiveness"`
}

// Params configures one offset calculation.
type Params struct {
	Enabled     bool    `json:"enabled"`
	MaxFraction float64 `json:"max_fraction"` // caller-supplied cap; defaults to domain.DefaultMaxSUO when zero
}

// Breakdown reports how the discount fraction was derived, for the
// caller-facing diagnostics.
type Breakdown struct {
	EligibleSurplus  float64 `json:"eligible_surplus"`
	UsableSurplus    float64 `json:"usable_surplus"`
	DiscountFraction float64 `json:"discount_fraction"`
	DiscountAmount   float64 `json:"discount_amount"`
	QuoteAfterSUO    float64 `json:"quote_after_suo"`
}

// Apply computes the offset fraction from eligible on-site surplus and
// applies it to nonAdminFeeTotal, which the caller must have already
// separated from any admin fee component.
func Apply(surpluses []Surplus, levels map[domain.Distinctiveness]int, totalEffectiveUnitsAllocated, nonAdminFeeTotal float64, params Params) Breakdown {
	maxFraction := params.MaxFraction
	if maxFraction <= 0 {
		maxFraction = domain.DefaultMaxSUO
	}

	if !params.Enabled || totalEffectiveUnitsAllocated <= 0 {
		return Breakdown{QuoteAfterSUO: nonAdminFeeTotal}
	}

	mediumLevel, ok := levels[domain.DistinctivenessMedium]
	var eligible float64
	if ok {
		for _, s := range surpluses {
			level, known := levels[s.Distinctiveness]
			if known && level >= mediumLevel {
				eligible += s.EffectiveUnits
			}
		}
	}

	usable := eligible * domain.SUOHeadroom
	fraction := usable / totalEffectiveUnitsAllocated
	if fraction > maxFraction {
		fraction = maxFraction
	}
	discount := nonAdminFeeTotal * fraction

	return Breakdown{
		EligibleSurplus:  eligible,
		UsableSurplus:    usable,
		DiscountFraction: fraction,
		DiscountAmount:   discount,
		QuoteAfterSUO:    nonAdminFeeTotal - discount,
	}
}
