package allocator

import (
	"fmt"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// verify re-checks a candidate solution from scratch against every
// constraint class independently of whichever procedure produced it
// (branch-and-bound search or greedy fallback). A candidate that fails
// this check is never returned to a caller.
func verify(rows []domain.AllocationRow, demand []domain.DemandRow, ref *domain.ReferenceTables, maxBanks int) error {
	stockUsed := make(map[string]float64)
	demandCovered := make(map[int]float64)
	banks := make(map[string]bool)

	for _, row := range rows {
		banks[row.BankID] = true
		demandCovered[row.DemandIdx] += row.EffectiveUnits

		if row.EffectiveUnits != 0 && row.EffectiveUnits < domain.MinUnitDelivery {
			return fmt.Errorf("allocation row for demand %d delivers %.6f units, below MinUnitDelivery", row.DemandIdx, row.EffectiveUnits)
		}

		if row.AllocationType == domain.AllocationPaired {
			for _, p := range row.PairedParts {
				stockUsed[p.StockID] += row.EffectiveUnits * p.StockUseRatio
			}
		} else {
			srm := ref.SRM.Multiplier(row.Tier)
			if srm <= 0 {
				return fmt.Errorf("allocation row for demand %d has unconfigured tier %q", row.DemandIdx, row.Tier)
			}
			if row.StockID == "" {
				return fmt.Errorf("allocation row for demand %d has no stock_id recorded", row.DemandIdx)
			}
			stockUsed[row.StockID] += row.EffectiveUnits / srm
		}
	}

	if maxBanks > 0 && len(banks) > maxBanks {
		return fmt.Errorf("candidate uses %d banks, exceeding the cap of %d", len(banks), maxBanks)
	}

	for _, s := range ref.Stock {
		if stockUsed[s.StockID] > s.QuantityAvailable+domain.DemandCoverageEpsilon {
			return fmt.Errorf("stock %s over-consumed: used %.6f of %.6f", s.StockID, stockUsed[s.StockID], s.QuantityAvailable)
		}
	}

	for i, d := range demand {
		if demandCovered[i] < d.UnitsRequired-domain.DemandCoverageEpsilon {
			return fmt.Errorf("demand %d (%s) under-covered: %.6f of %.6f", i, d.HabitatName, demandCovered[i], d.UnitsRequired)
		}
	}

	return nil
}
