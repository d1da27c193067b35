package metricparser

import (
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/aristath/bngoptimiser/internal/domain"
)

const headerScanWindow = 15

// columnIndexes maps the columns this parser cares about to their position
// in a located header row. -1 means the column was not found on this sheet
// (hedgerow/watercourse tabs may lack "group").
type columnIndexes struct {
	group, habitat, distinctiveness, projectWide int
}

// headerVariants tolerates the spelling differences seen across workbook
// versions: trailing whitespace, "project wide" vs "project-wide", etc.
var headerVariants = map[string][]string{
	"group":           {"group", "broad habitat"},
	"habitat":         {"habitat"},
	"distinctiveness": {"distinctiveness"},
	"projectwide":     {"project-wide change", "project wide change", "projectwide change", "net change"},
}

// locateHeader scans the first headerScanWindow rows of a sheet for the row
// containing a "habitat" column and a project-wide-change column, and
// returns the header row index and the resolved column positions.
func locateHeader(sheet *xlsx.Sheet) (int, columnIndexes, *domain.MetricParseError) {
	limit := len(sheet.Rows)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}
	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		row := sheet.Rows[rowIdx]
		cols := columnIndexes{group: -1, habitat: -1, distinctiveness: -1, projectWide: -1}
		for cellIdx, cell := range row.Cells {
			norm := strings.ToLower(strings.TrimSpace(cell.Value))
			if norm == "" {
				continue
			}
			switch {
			case matchesAny(norm, headerVariants["group"]):
				cols.group = cellIdx
			case matchesAny(norm, headerVariants["habitat"]):
				cols.habitat = cellIdx
			case matchesAny(norm, headerVariants["distinctiveness"]):
				cols.distinctiveness = cellIdx
			case matchesAny(norm, headerVariants["projectwide"]):
				cols.projectWide = cellIdx
			}
		}
		if cols.habitat >= 0 && cols.projectWide >= 0 {
			return rowIdx, cols, nil
		}
	}
	return 0, columnIndexes{}, &domain.MetricParseError{Sheet: sheet.Name, Reason: "could not locate a header row with habitat and project-wide-change columns"}
}

func matchesAny(value string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(value, v) {
			return true
		}
	}
	return false
}
