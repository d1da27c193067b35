package metricparser

import (
	"regexp"
	"strings"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// bandPatterns are checked in this order — "very high"/"very low" before
// their single-word counterparts, so "Very High" is never mis-banded as
// "High".
var bandPatterns = []struct {
	pattern *regexp.Regexp
	level   domain.Distinctiveness
}{
	{regexp.MustCompile(`(?i)very\s*high`), domain.DistinctivenessVeryHigh},
	{regexp.MustCompile(`(?i)very\s*low`), domain.DistinctivenessVeryLow},
	{regexp.MustCompile(`(?i)^high$|(?i)^high\b`), domain.DistinctivenessHigh},
	{regexp.MustCompile(`(?i)^medium$|(?i)^medium\b`), domain.DistinctivenessMedium},
	{regexp.MustCompile(`(?i)^low$|(?i)^low\b`), domain.DistinctivenessLow},
}

// distinctivenessFromExplicitColumn parses a cell value known to be an
// explicit distinctiveness column. ok is false when the value is unknown.
func distinctivenessFromExplicitColumn(value string) (domain.Distinctiveness, bool) {
	trimmed := strings.TrimSpace(value)
	for _, bp := range bandPatterns {
		if bp.pattern.MatchString(trimmed) {
			return bp.level, true
		}
	}
	return "", false
}

// distinctivenessFromBandingRow recognises a section-header row that
// announces the distinctiveness band for the rows beneath it — typically
// a row with exactly one non-empty cell reading e.g. "Very High Distinctiveness Habitats".
func distinctivenessFromBandingRow(rowText string) (domain.Distinctiveness, bool) {
	for _, bp := range bandPatterns {
		if bp.pattern.MatchString(rowText) {
			return bp.level, true
		}
	}
	return "", false
}
