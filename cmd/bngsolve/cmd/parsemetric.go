package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aristath/bngoptimiser/internal/metricparser"
)

var (
	metricWorkbookPath  string
	metricReferencePath string
	metricTargetPct     float64
)

var parseMetricCmd = &cobra.Command{
	Use:   "parse-metric",
	Short: "Reduce a DEFRA metric workbook to residual off-site demand",
	Run: func(cmd *cobra.Command, args []string) {
		_, ref, err := loadSolveFixture(metricReferencePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load reference fixture")
		}

		workbook, err := os.ReadFile(metricWorkbookPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read workbook")
		}

		result, err := metricparser.Parse(workbook, ref, metricTargetPct)
		if err != nil {
			log.Fatal().Err(err).Msg("metric parse failed")
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal result")
		}
		fmt.Println(string(out))
	},
}

func init() {
	parseMetricCmd.Flags().StringVar(&metricWorkbookPath, "workbook", "", "path to the .xlsx biodiversity metric workbook")
	parseMetricCmd.Flags().StringVar(&metricReferencePath, "reference", "", "path to a JSON fixture carrying the reference.habitat_catalog used to resolve workbook rows")
	parseMetricCmd.Flags().Float64Var(&metricTargetPct, "target-pct", 10.0, "headline net gain percentage required")
	for _, f := range []string{"workbook", "reference"} {
		if err := parseMetricCmd.MarkFlagRequired(f); err != nil {
			log.Panic().Err(err).Str("flag", f).Msg("MarkFlagRequired failed")
		}
	}
	rootCmd.AddCommand(parseMetricCmd)
}
