package metricparser

import (
	"sort"

	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/rules"
)

// offsetPool is a mutable surplus bucket consumed during on-site offsetting
// and headline reconciliation; it is built once per umbrella and drained
// in place.
type offsetPool struct {
	habitat   string
	remaining float64
	dist      domain.Distinctiveness
}

// applyOnsiteOffsets consumes surplus rows against deficit rows of the same
// umbrella, deficits visited highest-distinctiveness-first, each deficit
// drawing from whichever legal surplus habitats remain. It returns the
// residual deficits and whatever surplus pools remain afterward.
func applyOnsiteOffsets(umbrella domain.UmbrellaType, deficitRows, surplusRows []rawRow, ctx rules.Context) ([]Deficit, []*offsetPool) {
	pools := make([]*offsetPool, 0, len(surplusRows))
	for _, s := range surplusRows {
		pools = append(pools, &offsetPool{habitat: s.habitat, remaining: s.projectWide, dist: s.distinctiveness})
	}

	deficits := make([]rawRow, len(deficitRows))
	copy(deficits, deficitRows)
	sort.SliceStable(deficits, func(i, j int) bool {
		li, _ := ctx.Catalog.DistinctivenessLevel(deficits[i].distinctiveness)
		lj, _ := ctx.Catalog.DistinctivenessLevel(deficits[j].distinctiveness)
		return li > lj
	})

	var residuals []Deficit
	for _, d := range deficits {
		need := -d.projectWide // deficits are recorded negative
		for _, pool := range pools {
			if need <= domain.DemandCoverageEpsilon {
				break
			}
			if pool.remaining <= 0 {
				continue
			}
			if !rules.Legal(ctx, d.habitat, umbrella, pool.habitat) {
				continue
			}
			take := pool.remaining
			if take > need {
				take = need
			}
			pool.remaining -= take
			need -= take
		}
		if need > domain.DemandCoverageEpsilon {
			residuals = append(residuals, Deficit{
				Habitat:                     d.habitat,
				Umbrella:                    umbrella,
				UnitsShort:                  need,
				RequiresBespokeCompensation: umbrella == domain.UmbrellaWatercourse && d.distinctiveness == domain.DistinctivenessVeryHigh,
			})
		}
	}
	return residuals, pools
}
