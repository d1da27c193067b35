// Package metricparser reduces a DEFRA-style biodiversity metric workbook
// into residual off-site demand: on-site deficits are first offset against
// on-site surpluses under the same trading rules the allocator uses, then
// any shortfall against the headline net-gain percentage is surfaced as a
// synthetic demand row.
package metricparser

import "github.com/aristath/bngoptimiser/internal/domain"

// sheetSpec describes one umbrella's tab: its sheet name candidates (the
// workbook's naming is not fully standardised) and whether it carries an
// explicit broad-group column.
type sheetSpec struct {
	umbrella     domain.UmbrellaType
	sheetNames   []string
	hasGroupCol  bool
}

var sheetSpecs = []sheetSpec{
	{umbrella: domain.UmbrellaArea, sheetNames: []string{"Area Habitats Site", "Area Habitats Off-Site", "Area"}, hasGroupCol: true},
	{umbrella: domain.UmbrellaHedgerow, sheetNames: []string{"Hedgerow Site", "Hedgerow Habitats Site", "Hedgerow"}, hasGroupCol: false},
	{umbrella: domain.UmbrellaWatercourse, sheetNames: []string{"Watercourse Site", "Watercourses Site", "Watercourse"}, hasGroupCol: false},
}

// rawRow is one parsed data row before trading-rule offsetting.
type rawRow struct {
	habitat         string
	broadGroup      string
	distinctiveness domain.Distinctiveness
	projectWide     float64
}

// Deficit is a residual on-site/off-site shortfall for one habitat.
type Deficit struct {
	Habitat                     string              `json:"habitat"`
	Umbrella                    domain.UmbrellaType `json:"umbrella"`
	UnitsShort                  float64             `json:"units_short"`
	RequiresBespokeCompensation bool                `json:"requires_bespoke_compensation"`
}

// Surplus is an on-site excess available to fund offsetting or the SUO.
type Surplus struct {
	Habitat         string                 `json:"habitat"`
	Umbrella        domain.UmbrellaType    `json:"umbrella"`
	EffectiveUnits  float64                `json:"effective_units"`
	Distinctiveness domain.Distinctiveness `json:"distinctiveness"`
}

// Result is the parser's output: residual deficits per umbrella, leftover
// on-site surpluses, and the headline net-gain shortfall expressed as a
// synthetic demand row ready to feed the allocator.
type Result struct {
	AreaDeficits        []Deficit          `json:"area_deficits"`
	HedgerowDeficits    []Deficit          `json:"hedgerow_deficits"`
	WatercourseDeficits []Deficit          `json:"watercourse_deficits"`
	OnsiteSurpluses     []Surplus          `json:"onsite_surpluses"`
	HeadlineRequired    float64            `json:"headline_required"`
	HeadlineDemand      *domain.DemandRow  `json:"headline_demand,omitempty"`
	BespokeRequired     []Deficit          `json:"bespoke_required"`
}
