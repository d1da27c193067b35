package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aristath/bngoptimiser/internal/solve"
)

var solveFixturePath string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the allocation engine against a JSON fixture and print the result",
	Run: func(cmd *cobra.Command, args []string) {
		fx, ref, err := loadSolveFixture(solveFixturePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load fixture")
		}

		orchestrator := solve.New().WithLogger(solverLogger())
		result, err := orchestrator.Solve(fx.Demand, fx.Context, ref)
		if err != nil {
			log.Fatal().Err(err).Msg("solve failed")
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal result")
		}
		fmt.Println(string(out))
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveFixturePath, "fixture", "", "path to a JSON fixture (reference tables, demand, context)")
	if err := solveCmd.MarkFlagRequired("fixture"); err != nil {
		log.Panic().Err(err).Msg("MarkFlagRequired for fixture failed")
	}
	rootCmd.AddCommand(solveCmd)
}
