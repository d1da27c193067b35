package allocator

import "github.com/aristath/bngoptimiser/internal/domain"

// Params configures one solve. TimeoutMS bounds the branch-and-bound
// search's wall-clock budget (0 disables the bound entirely); past it the
// search abandons whatever it has found and the solve either falls back to
// greedy or surfaces *domain.SolverTimeout, per AllowGreedyFallback. A
// negative TimeoutMS sets a deadline already in the past, which is useful
// for deterministically exercising the timeout path in tests without
// depending on how fast the search actually runs.
// MaxBanks is fixed at 2 by the domain but kept as a field so tests can
// shrink/grow the cap without touching the algorithm.
type Params struct {
	TimeoutMS           int  `json:"timeout_ms"`
	AllowGreedyFallback bool `json:"allow_greedy_fallback"`
	MaxBanks            int  `json:"max_banks"`
}

// DefaultParams returns the solver's standard operating parameters.
func DefaultParams() Params {
	return Params{TimeoutMS: 60000, AllowGreedyFallback: true, MaxBanks: 2}
}

// Result is the solver's internal output, before the caller-facing
// SolveResult is assembled by the orchestrator.
type Result struct {
	Rows       []domain.AllocationRow
	TotalCost  float64
	UsedGreedy bool // true when the greedy fallback produced the result (search timed out or found no feasible candidate)
	BanksUsed  []string
}

// weighted is one candidate's scalar lexicographic score: cost first,
// proximity second, capacity third — combined into one float using
// calibrated epsilons so sorting by this value alone reproduces the
// lexicographic ordering.
type weighted struct {
	rows  []domain.AllocationRow
	score float64
	cost  float64
}
