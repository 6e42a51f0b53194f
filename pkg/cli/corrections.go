package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/encounter"
	"github.com/spf13/cobra"
)

var correctionsLoadPath string

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "List or load the encounter-id corrections table",
	Long: `Corrections shows the curated encounter-id corrections stored in Postgres.
With --load the stored list is replaced from a YAML file, keeping the table
in step with the issue log it is transcribed from.

Example:
  icca-curate corrections
  icca-curate corrections --load issues.yaml`,
	RunE: runCorrections,
}

func init() {
	rootCmd.AddCommand(correctionsCmd)

	correctionsCmd.Flags().StringVar(&correctionsLoadPath, "load", "", "replace stored corrections from this YAML file")
}

func runCorrections(cmd *cobra.Command, args []string) error {
	db, err := database.GetPostgres()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer database.ClosePostgres()

	repo := encounter.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return err
	}

	if correctionsLoadPath != "" {
		list, err := encounter.LoadCorrections(correctionsLoadPath)
		if err != nil {
			return fmt.Errorf("loading corrections: %w", err)
		}
		if err := repo.ReplaceCorrections(cmd.Context(), list); err != nil {
			return err
		}
		fmt.Printf("stored %d corrections\n", len(list.Corrections))
		return nil
	}

	list, err := repo.ListCorrections(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "erroneousId\tadjustedId\tunit\texplanation")
	for _, c := range list.Corrections {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", c.ErroneousID, c.AdjustedID, c.ClinicalUnitID, c.Explanation)
	}
	w.Flush()
	fmt.Printf("\n%d corrections stored\n", len(list.Corrections))
	return nil
}
