// Package solve wires the reference tables, geography resolver, trading
// rules, option builder, allocator, and surplus uplift offset together
// into the one entry point a caller actually invokes.
package solve

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/bngoptimiser/internal/allocator"
	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/geography"
	"github.com/aristath/bngoptimiser/internal/pricing"
	"github.com/aristath/bngoptimiser/internal/suo"
)

// Orchestrator holds the one piece of long-lived state a solve needs: a
// logger. Constructed fresh per caller, mirroring allocator.Allocator —
// never a package-level singleton, so concurrent solves never share state.
type Orchestrator struct {
	Logger zerolog.Logger
}

// New returns an Orchestrator with a no-op logger; call WithLogger to
// attach one.
func New() *Orchestrator {
	return &Orchestrator{Logger: zerolog.Nop()}
}

// WithLogger returns a copy of o with the given logger attached.
func (o *Orchestrator) WithLogger(l zerolog.Logger) *Orchestrator {
	return &Orchestrator{Logger: l}
}

// Solve runs the full C1-C7 pipeline: it classifies every bank's spatial
// tier against ctx.Target, resolves the pricing contract size (applying a
// tier_up promoter override if active), enumerates priced legal options,
// solves for the cheapest admissible assignment, and applies the surplus
// uplift offset if enabled. It returns a *domain.NoLegalOptionsError,
// *domain.InfeasibleError, *domain.UnmetDemandError, or (when the greedy
// fallback is disabled) *domain.SolverTimeout on failure, per spec §7; a
// *domain.ConfigError comes earlier, from domain.NewReferenceTables.
func (o *Orchestrator) Solve(demand []domain.DemandRow, ctx Context, ref *domain.ReferenceTables) (*Result, error) {
	log := o.Logger.With().Int("demand_rows", len(demand)).Logger()

	bankTier := make(map[string]domain.Tier, len(ref.Banks))
	resolver := geography.NewResolver(ctx.Target)
	for _, b := range ref.Banks {
		bankTier[b.BankID] = resolver.Classify(b)
	}

	availableSizes := make(map[domain.ContractSize]bool)
	for _, p := range ref.Pricing {
		availableSizes[p.ContractSize] = true
	}
	appliedSize := pricing.SelectContractSize(ctx.ContractSize, ctx.Promoter, availableSizes)

	var diagnostics []string
	if appliedSize != ctx.ContractSize {
		diagnostics = append(diagnostics, fmt.Sprintf(
			"promoter tier-up applied: pricing looked up at %q (quote recorded as %q)", appliedSize, ctx.ContractSize))
	}

	buildInputs := pricing.BuildInputs{
		Demand:       demand,
		Reference:    ref,
		BankTier:     bankTier,
		ContractSize: appliedSize,
		Promoter:     ctx.Promoter,
	}
	options := pricing.Build(buildInputs)
	log.Debug().Int("options", len(options)).Str("contract_size", string(appliedSize)).Msg("options built")

	if err := firstDemandWithNoOptions(demand, options, buildInputs); err != nil {
		return nil, err
	}

	solverParams := ctx.Solver
	if solverParams.MaxBanks == 0 {
		solverParams.MaxBanks = 2
	}

	alloc := allocator.New().WithLogger(o.Logger)
	allocResult, err := alloc.Solve(options, demand, ref, solverParams)
	if err != nil {
		return nil, err
	}

	if allocResult.UsedGreedy {
		diagnostics = append(diagnostics, "branch-and-bound search timed out or found no feasible candidate; deterministic greedy fallback was used")
	}
	diagnostics = append(diagnostics, watercourseCatchmentDiagnostics(allocResult.Rows, demand)...)

	siteHabitatTotals := allocator.SiteHabitatTotals(allocResult.Rows)
	collapsed := allocator.Collapse(allocResult.Rows)

	var totalEffectiveUnits float64
	for _, r := range allocResult.Rows {
		totalEffectiveUnits += r.EffectiveUnits
	}

	suoBreakdown := suo.Apply(ctx.OnsiteSurpluses, ref.DistinctivenessLevels, totalEffectiveUnits, allocResult.TotalCost, ctx.SUO)

	return &Result{
		Rows:                  collapsed,
		SiteHabitatTotals:     siteHabitatTotals,
		ContractSizeRequested: ctx.ContractSize,
		ContractSizeApplied:   appliedSize,
		TotalCost:             allocResult.TotalCost,
		SUO:                   suoBreakdown,
		Diagnostics:           diagnostics,
	}, nil
}

// firstDemandWithNoOptions reports a *domain.NoLegalOptionsError, with a
// sample of rejected candidates, for the lowest-indexed demand row that
// built zero options — a demand with zero legal options never reaches the
// allocator at all, so this check must run before it, per spec §7.
func firstDemandWithNoOptions(demand []domain.DemandRow, options []domain.Option, in pricing.BuildInputs) error {
	hasOption := make([]bool, len(demand))
	for _, o := range options {
		hasOption[o.DemandIdx] = true
	}
	for i, d := range demand {
		if !hasOption[i] {
			return &domain.NoLegalOptionsError{
				DemandIdx: i,
				Habitat:   d.HabitatName,
				Rejected:  pricing.RejectedSamples(d, in),
			}
		}
	}
	return nil
}

// watercourseCatchmentDiagnostics flags, once per bank, that a watercourse
// demand's spatial tier was classified by LPA/NCA rather than catchment
// boundaries — per spec §9's documented caveat that a full fix needs
// external catchment data the engine does not have.
func watercourseCatchmentDiagnostics(rows []domain.AllocationRow, demand []domain.DemandRow) []string {
	flagged := make(map[string]bool)
	var banks []string
	for _, r := range rows {
		if r.DemandIdx < 0 || r.DemandIdx >= len(demand) {
			continue
		}
		if demand[r.DemandIdx].UmbrellaType != domain.UmbrellaWatercourse {
			continue
		}
		if !flagged[r.BankID] {
			flagged[r.BankID] = true
			banks = append(banks, r.BankID)
		}
	}
	sort.Strings(banks)

	out := make([]string, 0, len(banks))
	for _, b := range banks {
		out = append(out, fmt.Sprintf(
			"bank %s: watercourse spatial tier was classified by LPA/NCA, not catchment boundaries (external catchment data not available)", b))
	}
	return out
}
