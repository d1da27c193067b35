// Package pricing enumerates priced candidate options for each demand row,
// including paired combinations, and resolves the pricing-tier tier-up
// promoter override.
package pricing

import "github.com/aristath/bngoptimiser/internal/domain"

// PromoterDiscount describes the active promoter discount for a solve, if any.
type PromoterDiscount struct {
	Kind  domain.PromoterKind `json:"kind"`
	Value float64             `json:"value"` // percentage points, only meaningful for PromoterPercentage
}

// SelectContractSize resolves the pricing-lookup contract size from the
// caller's requested size, applying a one-step tier-up when the promoter
// discount kind is tier_up and a larger size exists in Pricing. The
// recorded quote size (what the caller actually asked for) is unaffected —
// callers must keep the original `requested` separately for that field.
func SelectContractSize(requested domain.ContractSize, promoter PromoterDiscount, availableSizes map[domain.ContractSize]bool) domain.ContractSize {
	if promoter.Kind != domain.PromoterTierUp {
		return requested
	}
	next, ok := requested.TierUp()
	if !ok {
		return requested
	}
	if availableSizes != nil && !availableSizes[next] {
		return requested
	}
	return next
}
