package metricparser

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/rules"
)

// Parse reduces a workbook's bytes to residual off-site demand. targetNetGainPct
// is the percentage uplift the headline table must reconcile against (e.g. 10
// for a 10% net gain requirement); ref supplies the habitat catalogue and
// trading-rule context used for on-site offsetting.
func Parse(workbook []byte, ref *domain.ReferenceTables, targetNetGainPct float64) (*Result, error) {
	f, err := xlsx.OpenBinary(workbook)
	if err != nil {
		return nil, &domain.MetricParseError{Reason: fmt.Sprintf("opening workbook: %v", err)}
	}

	ctx := rules.Context{Catalog: ref, TradingRules: ref.TradingRules}
	result := &Result{}
	var allRemainingPools []*offsetPool
	var allRemainingUmbrella []domain.UmbrellaType

	for _, spec := range sheetSpecs {
		sheet := findSheet(f, spec.sheetNames)
		if sheet == nil {
			continue // an absent tab means no demand/surplus for that umbrella
		}

		rows, perr := parseSheetRows(sheet, spec, ref)
		if perr != nil {
			return nil, perr
		}

		var deficitRows, surplusRows []rawRow
		for _, r := range rows {
			switch {
			case r.projectWide < -domain.DemandCoverageEpsilon:
				deficitRows = append(deficitRows, r)
			case r.projectWide > domain.DemandCoverageEpsilon:
				surplusRows = append(surplusRows, r)
			}
		}

		residuals, pools := applyOnsiteOffsets(spec.umbrella, deficitRows, surplusRows, ctx)
		allRemainingPools = append(allRemainingPools, pools...)
		for range pools {
			allRemainingUmbrella = append(allRemainingUmbrella, spec.umbrella)
		}

		var bespoke []Deficit
		for _, d := range residuals {
			if d.RequiresBespokeCompensation {
				bespoke = append(bespoke, d)
			}
		}
		result.BespokeRequired = append(result.BespokeRequired, bespoke...)

		switch spec.umbrella {
		case domain.UmbrellaArea:
			result.AreaDeficits = residuals
		case domain.UmbrellaHedgerow:
			result.HedgerowDeficits = residuals
		case domain.UmbrellaWatercourse:
			result.WatercourseDeficits = residuals
		}
	}

	baseline, berr := findBaseline(f)
	if berr != nil {
		return nil, berr
	}
	result.HeadlineRequired = baseline * targetNetGainPct / 100

	remaining := result.HeadlineRequired
	for i, pool := range allRemainingPools {
		if remaining <= domain.DemandCoverageEpsilon {
			break
		}
		if pool.remaining <= 0 {
			continue
		}
		if !rules.NetGainLegal(ctx, allRemainingUmbrella[i], pool.habitat) {
			continue
		}
		take := pool.remaining
		if take > remaining {
			take = remaining
		}
		pool.remaining -= take
		remaining -= take
	}

	if remaining > domain.DemandCoverageEpsilon {
		result.HeadlineDemand = &domain.DemandRow{
			HabitatName:   fmt.Sprintf("Net Gain (%g%%)", targetNetGainPct),
			UnitsRequired: remaining,
			UmbrellaType:  domain.UmbrellaArea,
		}
	}

	for i, pool := range allRemainingPools {
		if pool.remaining > domain.DemandCoverageEpsilon {
			result.OnsiteSurpluses = append(result.OnsiteSurpluses, Surplus{
				Habitat:         pool.habitat,
				Umbrella:        allRemainingUmbrella[i],
				EffectiveUnits:  pool.remaining,
				Distinctiveness: pool.dist,
			})
		}
	}

	return result, nil
}

func findSheet(f *xlsx.File, names []string) *xlsx.Sheet {
	for _, n := range names {
		if s, ok := f.Sheet[n]; ok {
			return s
		}
	}
	return nil
}
