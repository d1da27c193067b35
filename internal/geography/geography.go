// Package geography classifies a bank's spatial relation to a target site
// into local, adjacent or far. Normalisation and lookups are scoped to one
// Resolver instance per solve — no package-level cache — so concurrent
// solves never share mutable state.
package geography

import (
	"regexp"
	"strings"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// stripWords are removed from a normalised LPA/NCA name before comparison.
var stripWords = []string{
	"city of", "royal borough of", "council", "borough", "district", "county", "unitary",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalise lowercases, strips the configured administrative boilerplate
// words, and collapses to alphanumerics.
func Normalise(name string) string {
	n := strings.ToLower(name)
	for _, w := range stripWords {
		n = strings.ReplaceAll(n, w, "")
	}
	n = nonAlnum.ReplaceAllString(n, "")
	return n
}

// Target describes the development site being assessed.
type Target struct {
	LPAName       string   `json:"lpa_name"`
	NCAName       string   `json:"nca_name"`
	LPANeighbours []string `json:"lpa_neighbours"`
	NCANeighbours []string `json:"nca_neighbours"`
}

// Resolver classifies banks against one Target, caching normalised
// neighbour sets for the lifetime of a single solve.
type Resolver struct {
	target       Target
	normLPA      string
	normNCA      string
	lpaNeighbour map[string]bool
	ncaNeighbour map[string]bool
}

// NewResolver builds a Resolver for one solve's target site.
func NewResolver(target Target) *Resolver {
	r := &Resolver{
		target:       target,
		normLPA:      Normalise(target.LPAName),
		normNCA:      Normalise(target.NCAName),
		lpaNeighbour: make(map[string]bool, len(target.LPANeighbours)),
		ncaNeighbour: make(map[string]bool, len(target.NCANeighbours)),
	}
	for _, n := range target.LPANeighbours {
		if norm := Normalise(n); norm != "" {
			r.lpaNeighbour[norm] = true
		}
	}
	for _, n := range target.NCANeighbours {
		if norm := Normalise(n); norm != "" {
			r.ncaNeighbour[norm] = true
		}
	}
	return r
}

// Classify returns the tier for the given bank. Empty strings never match: a
// bank or target with an empty LPA/NCA name is never "local" on that axis.
func (r *Resolver) Classify(b domain.Bank) domain.Tier {
	bankLPA := Normalise(b.LPAName)
	bankNCA := Normalise(b.NCAName)

	if (bankLPA != "" && bankLPA == r.normLPA) || (bankNCA != "" && bankNCA == r.normNCA) {
		return domain.TierLocal
	}
	if (bankLPA != "" && r.lpaNeighbour[bankLPA]) || (bankNCA != "" && r.ncaNeighbour[bankNCA]) {
		return domain.TierAdjacent
	}
	return domain.TierFar
}
