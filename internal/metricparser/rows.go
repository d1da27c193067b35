package metricparser

import (
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/rules"
)

// parseSheetRows reads every data row beneath the located header, carrying
// forward the most recently seen distinctiveness banding row when the
// sheet has no explicit distinctiveness column.
func parseSheetRows(sheet *xlsx.Sheet, spec sheetSpec, ref *domain.ReferenceTables) ([]rawRow, *domain.MetricParseError) {
	headerIdx, cols, err := locateHeader(sheet)
	if err != nil {
		return nil, err
	}

	var out []rawRow
	var currentBand domain.Distinctiveness
	haveBand := false

	for i := headerIdx + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		habitat := cellAt(row, cols.habitat)

		if habitat == "" {
			if band, ok := bandFromRow(row); ok {
				currentBand, haveBand = band, true
			}
			continue
		}

		canon := rules.Canonicalise(habitat)
		entry, known := lookupCanonical(ref, canon)
		if !known {
			return nil, &domain.MetricParseError{Sheet: sheet.Name, Reason: "habitat \"" + habitat + "\" is absent from the catalogue"}
		}

		dist := entry.DistinctivenessName
		if cols.distinctiveness >= 0 {
			if explicit, ok := distinctivenessFromExplicitColumn(cellAt(row, cols.distinctiveness)); ok {
				dist = explicit
			}
		} else if haveBand {
			dist = currentBand
		}

		projectWide, perr := parseFloatCell(cellAt(row, cols.projectWide))
		if perr != nil {
			return nil, &domain.MetricParseError{Sheet: sheet.Name, Reason: "unparsable project-wide change value for \"" + habitat + "\""}
		}

		group := ""
		if cols.group >= 0 {
			group = cellAt(row, cols.group)
		} else {
			group = entry.BroadGroup
		}

		out = append(out, rawRow{
			habitat:         entry.HabitatName,
			broadGroup:      group,
			distinctiveness: dist,
			projectWide:     projectWide,
		})
	}
	return out, nil
}

func cellAt(row *xlsx.Row, idx int) string {
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[idx].Value)
}

func bandFromRow(row *xlsx.Row) (domain.Distinctiveness, bool) {
	var nonEmpty []string
	for _, c := range row.Cells {
		if v := strings.TrimSpace(c.Value); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) != 1 {
		return "", false
	}
	return distinctivenessFromBandingRow(nonEmpty[0])
}

func parseFloatCell(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
}

func lookupCanonical(ref *domain.ReferenceTables, canon string) (domain.HabitatCatalogEntry, bool) {
	for _, h := range ref.HabitatCatalog {
		if rules.Canonicalise(h.HabitatName) == canon {
			return h, true
		}
	}
	return domain.HabitatCatalogEntry{}, false
}
