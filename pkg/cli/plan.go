package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/harmonization"
	"github.com/chi-bristol/icca-curation/pkg/resolver"
	"github.com/spf13/cobra"
)

var (
	planCatalogPath  string
	planUnitID       int64
	planLimit        int
	planOutJSON      string
	planSnapshot     bool
	planFromSnapshot bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Map resolved attributes onto curated variables",
	Long: `Plan resolves attribute usage for every variable in the catalog and
reports which definition pairs feed each curated variable, plus the pairs
nothing in the catalog claims.

With --snapshot the catalog used is versioned into Postgres so the mapping a
study ran with can be reproduced later; --from-snapshot plans against the
most recent stored catalog instead of a YAML file.

Example:
  icca-curate plan --catalog variables.yaml
  icca-curate plan --catalog variables.yaml --json plan.json --snapshot
  icca-curate plan --from-snapshot`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planCatalogPath, "catalog", "", "variable catalog YAML (default: built-in example)")
	planCmd.Flags().Int64Var(&planUnitID, "unit", 0, "restrict to one clinical unit id")
	planCmd.Flags().IntVar(&planLimit, "limit", 0, "maximum rows per fact table (0: server default)")
	planCmd.Flags().StringVar(&planOutJSON, "json", "", "write plan JSON to file instead of stdout")
	planCmd.Flags().BoolVar(&planSnapshot, "snapshot", false, "store the catalog used as a snapshot in Postgres")
	planCmd.Flags().BoolVar(&planFromSnapshot, "from-snapshot", false, "plan against the latest stored catalog snapshot")
}

func runPlan(cmd *cobra.Command, args []string) error {
	var snapshots *harmonization.Repository
	if planSnapshot || planFromSnapshot {
		platformDB, err := database.GetPostgres()
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer database.ClosePostgres()
		snapshots = harmonization.NewRepository(platformDB)
		if err := snapshots.AutoMigrate(); err != nil {
			return err
		}
	}

	var catalog harmonization.Catalog
	var err error
	if planFromSnapshot {
		catalog, err = snapshots.LatestSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading catalog snapshot: %w", err)
		}
	} else {
		catalog, err = harmonization.Load(planCatalogPath)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
	}

	cfg := config.Load()
	db, err := database.GetReporting()
	if err != nil {
		return fmt.Errorf("connecting to reporting replica: %w", err)
	}
	defer database.CloseReporting()

	resolverSvc := resolver.NewService(resolver.NewRepository(db), cfg.QueryTimeout, cfg.MaxResultRows)
	planner := harmonization.NewPlanner(catalog, resolverSvc)

	req := harmonization.PlanRequest{Limit: planLimit}
	if planUnitID > 0 {
		req.ClinicalUnitID = &planUnitID
	}

	plan, err := planner.Plan(cmd.Context(), req)
	if err != nil {
		return err
	}

	if planSnapshot {
		id, err := snapshots.SaveSnapshot(cmd.Context(), catalog)
		if err != nil {
			return fmt.Errorf("storing catalog snapshot: %w", err)
		}
		fmt.Printf("catalog snapshot %s stored\n", id)
	}
	if plan.Truncated {
		fmt.Println("warning: row cap hit; unmapped list is incomplete")
	}

	out := os.Stdout
	if planOutJSON != "" {
		file, err := os.Create(planOutJSON)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(plan); err != nil {
		return err
	}

	if planOutJSON != "" {
		fmt.Printf("plan written to %s (%d variables, %d unmapped pairs)\n",
			planOutJSON, len(plan.Entries), len(plan.Unmapped))
	}
	return nil
}
