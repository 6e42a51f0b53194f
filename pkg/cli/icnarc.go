package cli

import (
	"fmt"
	"os"

	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/encounter"
	"github.com/chi-bristol/icca-curation/pkg/icnarc"
	"github.com/spf13/cobra"
)

var (
	icnarcDictPath   string
	icnarcCSVPath    string
	icnarcLoadLinks  bool
	icnarcCorrPath   string
	icnarcKeepUnit14 bool
)

var icnarcCmd = &cobra.Command{
	Use:   "icnarc <xml-file>",
	Short: "Import a WardWatcher ICNARC XML export",
	Long: `Icnarc parses the WardWatcher XML export, converts CMP codes to
human-readable descriptions using the dictionary, and writes the dataset
wide to CSV. With --load the ICNARC-to-encounter link table is stored in
Postgres for later joins.

Example:
  icca-curate icnarc export.xml --dictionary cmp.yaml --csv icnarc.csv
  icca-curate icnarc export.xml --dictionary cmp.yaml --load --corrections issues.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runIcnarc,
}

func init() {
	rootCmd.AddCommand(icnarcCmd)

	icnarcCmd.Flags().StringVar(&icnarcDictPath, "dictionary", "", "CMP dataset dictionary YAML (required)")
	icnarcCmd.Flags().StringVar(&icnarcCSVPath, "csv", "", "write the parsed dataset to this CSV file")
	icnarcCmd.Flags().BoolVar(&icnarcLoadLinks, "load", false, "store the ICNARC-to-encounter link table in Postgres")
	icnarcCmd.Flags().StringVar(&icnarcCorrPath, "corrections", "", "CIS-id corrections YAML applied before linking")
	icnarcCmd.Flags().BoolVar(&icnarcKeepUnit14, "keep-cardiac", false, "keep cardiac-unit records instead of dropping them")
	icnarcCmd.MarkFlagRequired("dictionary")
}

func runIcnarc(cmd *cobra.Command, args []string) error {
	dict, err := icnarc.LoadDictionary(icnarcDictPath)
	if err != nil {
		return fmt.Errorf("loading CMP dictionary: %w", err)
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	dataset, err := icnarc.Parse(file, dict)
	if err != nil {
		return err
	}
	fmt.Printf("parsed %d patients, %d CMP variables in use\n",
		len(dataset.Patients), len(dataset.Descriptions))

	if icnarcCSVPath != "" {
		out, err := os.Create(icnarcCSVPath)
		if err != nil {
			return err
		}
		if err := icnarc.WriteCSV(out, dataset); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Printf("dataset written to %s\n", icnarcCSVPath)
	}

	if !icnarcLoadLinks {
		return nil
	}

	corrections, err := encounter.LoadCorrections(icnarcCorrPath)
	if err != nil {
		return fmt.Errorf("loading corrections: %w", err)
	}

	cardiacUnit := 14 // WardWatcher unit numbering
	if icnarcKeepUnit14 {
		cardiacUnit = 0
	}

	records := encounter.CleanIcnarcRecords(dataset.LinkRecords(), corrections, cardiacUnit)

	db, err := database.GetPostgres()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer database.ClosePostgres()

	repo := encounter.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return err
	}

	if err := repo.ReplaceLinks(cmd.Context(), records); err != nil {
		return err
	}
	stored, err := repo.CountLinks(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("link table now holds %d rows\n", stored)
	return nil
}
