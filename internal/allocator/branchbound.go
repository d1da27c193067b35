package allocator

import (
	"sort"
	"time"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// searchBankSubsets implements the branch-and-bound half of the solver: the
// combinatorial heart of a BNG quote is not the continuous fill (that part
// is an exact transportation-style linear program, solved by fillExact once
// the active banks are fixed) but *which* one or two banks are allowed to
// be active at all. Each subset of size ≤ params.MaxBanks is a branch; its
// bound is the cost of the exact-fill candidate restricted to that subset.
// Single-bank branches are visited in increasing cost order so the
// incumbent tightens quickly, and a single-bank branch whose own cost
// already exceeds the incumbent is skipped. Two-bank branches are always
// evaluated: adding a bank can only lower a subset's cost, so a bank's
// single-bank cost is no lower bound for the pairs it belongs to.
//
// deadline is the wall-clock budget from params.TimeoutMS; a zero Time
// means unbounded. If the budget is exceeded mid-search, the search
// returns immediately with whatever incumbent it has found so far (or none)
// and timedOut=true — the caller decides whether that means falling back
// to greedy or surfacing domain.SolverTimeout.
func searchBankSubsets(options []domain.Option, demand []domain.DemandRow, ref *domain.ReferenceTables, eps epsilons, params Params, deadline time.Time) (best *weighted, ok bool, timedOut bool) {
	expired := func() bool { return !deadline.IsZero() && time.Now().After(deadline) }

	bankIDs := candidateBankIDs(options)
	if len(bankIDs) == 0 {
		return nil, false, false
	}

	singleBest := make(map[string]float64, len(bankIDs))
	for _, b := range bankIDs {
		if expired() {
			return nil, false, true
		}
		res := fillExact(optionsForBanks(options, map[string]bool{b: true}), demand, ref)
		if len(res.shortfalls) == 0 {
			singleBest[b] = res.totalCost
		} else {
			singleBest[b] = -1 // infeasible alone; still a valid branch root, just no useful bound
		}
	}
	sort.Slice(bankIDs, func(i, j int) bool {
		ci, cj := singleBest[bankIDs[i]], singleBest[bankIDs[j]]
		if ci < 0 {
			return false
		}
		if cj < 0 {
			return true
		}
		return ci < cj
	})

	maxBanks := params.MaxBanks
	if maxBanks <= 0 {
		maxBanks = 2
	}

	consider := func(subset map[string]bool) {
		res := fillExact(optionsForBanks(options, subset), demand, ref)
		if len(res.shortfalls) != 0 {
			return
		}
		score := eps.score(res.totalCost, res.proximitySum, res.capacitySum)
		if best == nil || score < best.score {
			best = &weighted{rows: res.rows, score: score, cost: res.totalCost}
		}
	}

	for _, b := range bankIDs {
		if expired() {
			return best, best != nil, true
		}
		if best != nil && singleBest[b] >= 0 && singleBest[b] > best.cost {
			continue // bound: even alone this bank can't beat the incumbent
		}
		consider(map[string]bool{b: true})
	}

	if maxBanks >= 2 {
		for i := 0; i < len(bankIDs); i++ {
			if expired() {
				return best, best != nil, true
			}
			for j := i + 1; j < len(bankIDs); j++ {
				if expired() {
					return best, best != nil, true
				}
				consider(map[string]bool{bankIDs[i]: true, bankIDs[j]: true})
			}
		}
	}

	return best, best != nil, false
}

func candidateBankIDs(options []domain.Option) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range options {
		if !seen[o.BankID] {
			seen[o.BankID] = true
			out = append(out, o.BankID)
		}
	}
	sort.Strings(out)
	return out
}

func optionsForBanks(options []domain.Option, subset map[string]bool) []domain.Option {
	var out []domain.Option
	for _, o := range options {
		if subset[o.BankID] {
			out = append(out, o)
		}
	}
	return out
}
