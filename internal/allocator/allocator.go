// Package allocator implements the mixed-integer allocation solve: a
// branch-and-bound search over which one or two banks may be active (each
// candidate subset filled exactly via a Big-M simplex, see exactfill.go), a
// deterministic greedy fallback used when the search times out or finds no
// feasible subset, and a shared constraint-checker that re-verifies
// whichever candidate either procedure produces.
package allocator

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// Allocator holds the one piece of long-lived state the solve needs: a
// logger. Constructed fresh per caller; never a package-level singleton.
type Allocator struct {
	Logger zerolog.Logger
}

// New returns an Allocator with a no-op logger; call WithLogger to attach one.
func New() *Allocator {
	return &Allocator{Logger: zerolog.Nop()}
}

// WithLogger returns a copy of a with the given logger attached.
func (a *Allocator) WithLogger(l zerolog.Logger) *Allocator {
	return &Allocator{Logger: l}
}

// Solve computes the cheapest legal assignment of options to demand. It
// first searches bank subsets up to params.MaxBanks via branch-and-bound,
// each subset filled exactly; if that search exceeds params.TimeoutMS
// without finishing, or finishes without a fully-covering candidate, it
// falls back to one deterministic global greedy pass when
// params.AllowGreedyFallback allows it — otherwise it surfaces
// *domain.SolverTimeout or *domain.InfeasibleError respectively. Either
// candidate is independently re-verified before being returned.
func (a *Allocator) Solve(options []domain.Option, demand []domain.DemandRow, ref *domain.ReferenceTables, params Params) (*Result, error) {
	traceID := uuid.New().String()
	log := a.Logger.With().Str("trace_id", traceID).Logger()
	log.Debug().Int("options", len(options)).Int("demand_rows", len(demand)).Msg("allocator solve starting")

	if len(demand) == 0 {
		return &Result{}, nil
	}

	if len(options) == 0 {
		return nil, noLegalOptionsFor(demand)
	}

	eps := calibrate(options, ref.Banks)

	var deadline time.Time
	if params.TimeoutMS != 0 {
		deadline = time.Now().Add(time.Duration(params.TimeoutMS) * time.Millisecond)
	}

	candidate, ok, timedOut := searchBankSubsets(options, demand, ref, eps, params, deadline)
	if timedOut {
		log.Warn().Int("timeout_ms", params.TimeoutMS).Msg("branch-and-bound exceeded its wall-clock budget")
		if !params.AllowGreedyFallback {
			return nil, &domain.SolverTimeout{TimeoutMS: params.TimeoutMS}
		}
	} else if ok {
		if err := verify(candidate.rows, demand, ref, params.MaxBanks); err != nil {
			log.Error().Err(err).Msg("branch-and-bound candidate failed verification")
			return nil, &domain.InfeasibleError{Reason: err.Error()}
		}
		log.Info().Float64("total_cost", candidate.cost).Msg("branch-and-bound solve succeeded")
		return &Result{Rows: candidate.rows, TotalCost: candidate.cost, BanksUsed: banksUsed(candidate.rows)}, nil
	}

	if !params.AllowGreedyFallback {
		return nil, &domain.InfeasibleError{Reason: "no bank subset of the allowed size covers all demand"}
	}

	log.Warn().Msg("branch-and-bound found no feasible candidate, falling back to greedy")
	fallback := fillGreedy(options, demand, ref, params.MaxBanks)
	if len(fallback.shortfalls) > 0 {
		log.Error().Int("shortfalls", len(fallback.shortfalls)).Msg("greedy fallback left residual unmet demand")
		return nil, &domain.UnmetDemandError{Shortfalls: fallback.shortfalls}
	}
	if err := verify(fallback.rows, demand, ref, params.MaxBanks); err != nil {
		return nil, &domain.InfeasibleError{Reason: err.Error()}
	}

	log.Info().Float64("total_cost", fallback.totalCost).Msg("greedy fallback succeeded")
	return &Result{Rows: fallback.rows, TotalCost: fallback.totalCost, UsedGreedy: true, BanksUsed: banksUsed(fallback.rows)}, nil
}

func banksUsed(rows []domain.AllocationRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.BankID] {
			seen[r.BankID] = true
			out = append(out, r.BankID)
		}
	}
	return out
}

func noLegalOptionsFor(demand []domain.DemandRow) error {
	if len(demand) == 0 {
		return nil
	}
	return &domain.NoLegalOptionsError{DemandIdx: 0, Habitat: demand[0].HabitatName}
}
