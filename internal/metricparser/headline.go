package metricparser

import (
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/aristath/bngoptimiser/internal/domain"
)

// findBaseline scans every sheet for a row carrying a "baseline" label cell
// and returns the first numeric value found in a later cell on that row.
// The headline table's exact column layout varies by workbook version, so
// this looks for the label rather than a fixed cell reference.
func findBaseline(f *xlsx.File) (float64, *domain.MetricParseError) {
	for _, sheet := range f.Sheets {
		for _, row := range sheet.Rows {
			labelIdx := -1
			for i, cell := range row.Cells {
				if strings.Contains(strings.ToLower(cell.Value), "baseline") {
					labelIdx = i
					break
				}
			}
			if labelIdx < 0 {
				continue
			}
			for i := labelIdx + 1; i < len(row.Cells); i++ {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row.Cells[i].Value), 64); err == nil {
					return v, nil
				}
			}
		}
	}
	return 0, &domain.MetricParseError{Sheet: "", Reason: "could not locate a baseline value in the headline results table"}
}
