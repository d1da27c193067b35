package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/solve"
)

// referenceFixture is the on-disk shape of a reference-tables snapshot: a
// plain JSON document mirroring domain.ReferenceTables' exported fields,
// since the derived indexes are rebuilt by domain.NewReferenceTables and
// never serialised.
type referenceFixture struct {
	Banks                 []domain.Bank                          `json:"banks"`
	HabitatCatalog        []domain.HabitatCatalogEntry           `json:"habitat_catalog"`
	Pricing               []domain.PricingEntry                  `json:"pricing"`
	Stock                 []domain.StockEntry                    `json:"stock"`
	DistinctivenessLevels map[domain.Distinctiveness]int         `json:"distinctiveness_levels"`
	SRM                   domain.SRM                              `json:"srm"`
	TradingRules          map[string]domain.TradingRuleOverride  `json:"trading_rules,omitempty"`
}

// solveFixture is the full on-disk input to the `solve` subcommand: a
// reference snapshot, the residual demand, and the solve context.
type solveFixture struct {
	Reference referenceFixture   `json:"reference"`
	Demand    []domain.DemandRow `json:"demand"`
	Context   solve.Context      `json:"context"`
}

func loadSolveFixture(path string) (*solveFixture, *domain.ReferenceTables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}

	var fx solveFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	srm := fx.Reference.SRM
	if srm == nil {
		srm = domain.DefaultSRM()
	}

	ref, err := domain.NewReferenceTables(
		fx.Reference.Banks,
		fx.Reference.HabitatCatalog,
		fx.Reference.Pricing,
		fx.Reference.Stock,
		fx.Reference.DistinctivenessLevels,
		srm,
		fx.Reference.TradingRules,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("constructing reference tables: %w", err)
	}

	return &fx, ref, nil
}
