package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"github.com/chi-bristol/icca-curation/pkg/locator"
	"github.com/spf13/cobra"
)

var (
	locateField string
	locateLimit int
)

var locateCmd = &cobra.Command{
	Use:   "locate <pattern>",
	Short: "Search intervention definitions by label pattern",
	Long: `Locate searches the D_Intervention table by substring. The long label is
searched first; with --field auto (the default) the short label is consulted
only when the long label finds nothing.

Short labels are abbreviated and overloaded, so expect false positives
there ("hr" is both heart rate and hour).

Example:
  icca-curate locate "blood pressure"
  icca-curate locate nbp --field short`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().StringVar(&locateField, "field", models.FieldAuto, "label field to search: long, short or auto")
	locateCmd.Flags().IntVar(&locateLimit, "limit", 0, "maximum matches (0: server default)")
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	db, err := database.GetReporting()
	if err != nil {
		return fmt.Errorf("connecting to reporting replica: %w", err)
	}
	defer database.CloseReporting()

	svc := locator.NewService(locator.NewRepository(db), cfg.MaxResultRows)
	result, err := svc.Search(cmd.Context(), models.SearchRequest{
		Pattern: args[0],
		Field:   locateField,
		Limit:   locateLimit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "interventionId\tlongLabel\tshortLabel")
	for _, match := range result.Matches {
		fmt.Fprintf(w, "%d\t%s\t%s\n", match.InterventionID, match.LongLabel, match.ShortLabel)
	}
	w.Flush()
	fmt.Printf("\n%d matches on %s label for %s\n", len(result.Matches), result.FieldSearched, result.Pattern)
	return nil
}
