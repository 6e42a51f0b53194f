package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"github.com/chi-bristol/icca-curation/pkg/resolver"
	"github.com/spf13/cobra"
)

var (
	attrFactTable string
	attrUnitID    int64
	attrLimit     int
)

var attributesCmd = &cobra.Command{
	Use:   "attributes <interventionId...>",
	Short: "Rank attribute usage for located interventions",
	Long: `Attributes joins attribute definitions to a fact table and counts, per
(intervention, attribute) pair, the distinct encounters carrying at least
one record. Heavily used pairs sort first; they are usually the variable
the study is after.

Example:
  icca-curate attributes 3363 3779 4001 7794 21039 --fact-table PtAssessment
  icca-curate attributes 5321 --fact-table PtMedication --unit 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAttributes,
}

func init() {
	rootCmd.AddCommand(attributesCmd)

	attributesCmd.Flags().StringVar(&attrFactTable, "fact-table", "PtAssessment", "fact table to resolve against")
	attributesCmd.Flags().Int64Var(&attrUnitID, "unit", 0, "restrict to one clinical unit id")
	attributesCmd.Flags().IntVar(&attrLimit, "limit", 0, "maximum rows (0: server default)")
}

func runAttributes(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid intervention id %q", arg)
		}
		ids = append(ids, id)
	}

	cfg := config.Load()
	db, err := database.GetReporting()
	if err != nil {
		return fmt.Errorf("connecting to reporting replica: %w", err)
	}
	defer database.CloseReporting()

	svc := resolver.NewService(resolver.NewRepository(db), cfg.QueryTimeout, cfg.MaxResultRows)

	req := models.ResolveRequest{
		InterventionIDs: ids,
		FactTable:       attrFactTable,
		Limit:           attrLimit,
	}
	if attrUnitID > 0 {
		req.ClinicalUnitID = &attrUnitID
	}

	result, err := svc.Resolve(cmd.Context(), req)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "interventionId\tattributeId\tintervention\tattribute\tconcept\tencounters")
	for _, row := range result.Rows {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%d\n",
			row.InterventionID, row.AttributeID, row.InterventionLabel,
			row.AttributeLabel, row.ConceptLabel, row.EncounterCount)
	}
	w.Flush()
	if result.Truncated {
		fmt.Printf("\nresult truncated at %d rows\n", len(result.Rows))
	}
	return nil
}
