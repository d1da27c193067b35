// Package solve wires the reference tables, geography resolver, trading
// rules, option builder, allocator, and surplus uplift offset together
// into the one entry point a caller actually invokes.
package solve

import (
	"github.com/aristath/bngoptimiser/internal/allocator"
	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/geography"
	"github.com/aristath/bngoptimiser/internal/pricing"
	"github.com/aristath/bngoptimiser/internal/suo"
)

// Context carries everything about the target site and caller options that
// is not part of the reference snapshot.
type Context struct {
	Target          geography.Target         `json:"target"`
	ContractSize    domain.ContractSize      `json:"contract_size"`
	Promoter        pricing.PromoterDiscount `json:"promoter"`
	SUO             suo.Params               `json:"suo"`
	OnsiteSurpluses []suo.Surplus            `json:"onsite_surpluses"`
	Solver          allocator.Params         `json:"solver"`
}

// Result is the caller-facing outcome of one solve.
type Result struct {
	Rows                  []domain.AllocationRow    `json:"rows"`
	SiteHabitatTotals     []domain.SiteHabitatTotal `json:"site_hab_totals"`
	ContractSizeRequested domain.ContractSize       `json:"contract_size_requested"`
	ContractSizeApplied   domain.ContractSize       `json:"contract_size_applied"`
	TotalCost             float64                   `json:"total_cost"`
	SUO                   suo.Breakdown             `json:"suo"`
	Diagnostics           []string                  `json:"diagnostics"`
}
