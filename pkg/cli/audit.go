package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent query-audit events",
	Long: `Audit lists the most recent query-audit events the audit worker has
stored, newest first.

Example:
  icca-curate audit --limit 20`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum events to list")
}

func runAudit(cmd *cobra.Command, args []string) error {
	db, err := database.GetPostgres()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer database.ClosePostgres()

	records, err := audit.NewRepository(db).ListRecent(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "occurredAt\toperation\tsource\tdetails")
	for _, record := range records {
		details, _ := json.Marshal(record.Details)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			record.OccurredAt.Format("2006-01-02 15:04:05"), record.EventType, record.Source, details)
	}
	w.Flush()
	fmt.Printf("\n%d events\n", len(records))
	return nil
}
