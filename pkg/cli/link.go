package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/encounter"
	"github.com/spf13/cobra"
)

var linkOutJSON string

var linkCmd = &cobra.Command{
	Use:   "link <stays.json>",
	Short: "Link cleaned ICU stays to stored ICNARC episodes",
	Long: `Link cleans a Philips encounter-summary extract (JSON array of stays)
using the corrections stored in Postgres, combines split stays, and joins
them to the ICNARC link table loaded by the icnarc command. The join is
inner; the summary reports how many episodes matched.

Example:
  icca-curate link stays.json
  icca-curate link stays.json --json linked.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)

	linkCmd.Flags().StringVar(&linkOutJSON, "json", "", "write linked stays JSON to file instead of the table")
}

func runLink(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var stays []encounter.Stay
	if err := json.Unmarshal(content, &stays); err != nil {
		return fmt.Errorf("parsing stays: %w", err)
	}
	if len(stays) == 0 {
		return fmt.Errorf("no stays in %s", args[0])
	}

	cfg := config.Load()
	db, err := database.GetPostgres()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer database.ClosePostgres()

	repo := encounter.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return err
	}

	corrections, err := repo.ListCorrections(cmd.Context())
	if err != nil {
		return err
	}
	cleaner := encounter.NewCleaner(corrections, cfg.CardiacUnitID)
	cleaned, summary := cleaner.Clean(stays)
	combined := encounter.Combine(cleaned)

	records, err := repo.ListLinks(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("link table is empty; run icnarc --load first")
	}

	linked, linkSummary := encounter.Link(combined, records)

	if linkOutJSON != "" {
		file, err := os.Create(linkOutJSON)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(linked); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "encounterId\ticnarcNumber\tinTime\toutTime\tlosDays")
		for _, stay := range linked {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				stay.EncounterID, stay.ICNARCNumber,
				stay.InTime.Format("2006-01-02 15:04"), stay.OutTime.Format("2006-01-02 15:04"),
				encounter.LengthOfStayDays(stay.LengthOfStayMins))
		}
		w.Flush()
	}

	fmt.Printf("\n%d stays (%d corrected) combined to %d; %d of %d ICNARC episodes linked\n",
		summary.InputRows, summary.CorrectedRows, len(combined),
		linkSummary.Linked, linkSummary.IcnarcRecords)
	return nil
}
