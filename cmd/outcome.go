package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/importer"
	"github.com/medhold/dispute-cli/internal/model"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record and import case outcomes",
	Long: "Maintains the outcome ledger behind merit scoring: record single case " +
		"resolutions or import them in bulk from CSV, spreadsheets, or Salesforce.",
}

// -- outcome record --

var (
	recordCaseID     string
	recordTypes      []string
	recordOutcome    string
	recordAmount     float64
	recordDays       int
	recordConfidence float64
	recordActual     float64
)

var outcomeRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one case outcome",
	Long: `Appends a single resolved case to the outcome ledger.

Examples:
  dispute-cli outcome record --types settlement_contradiction --outcome won \
      --amount 50000 --days 45 --confidence 0.8 --actual 1.0

  dispute-cli outcome record --types coverage_contradiction,pressure_deadline \
      --outcome lost --days 120`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec := model.CaseLearningRecord{
			ID:                   recordCaseID,
			ContradictionTypes:   recordTypes,
			Outcome:              model.Outcome(recordOutcome),
			TimeToResolutionDays: recordDays,
			ConfidenceAtStart:    recordConfidence,
			ActualOutcome:        recordActual,
		}
		if cmd.Flags().Changed("amount") {
			rec.SettlementAmount = &recordAmount
		}

		if err := st.Record(ctx, rec); err != nil {
			return eris.Wrap(err, "record outcome")
		}

		zap.L().Info("outcome recorded",
			zap.Strings("types", recordTypes),
			zap.String("outcome", recordOutcome),
		)
		return nil
	},
}

// -- outcome import --

var outcomeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import case outcomes",
}

var (
	importCSVFile   string
	importDelimiter string
)

var outcomeImportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Import outcomes from a CSV export",
	Long: `Imports case outcomes from a CSV file. The header must name at least
the outcome and contradiction_types columns; amounts accept Norwegian
formats like "kr 50.000".

Examples:
  dispute-cli outcome import csv --file utfall.csv
  dispute-cli outcome import csv --file utfall.csv --delimiter ";"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		f, err := os.Open(importCSVFile)
		if err != nil {
			return eris.Wrap(err, "open csv file")
		}
		defer f.Close() //nolint:errcheck

		var opts importer.CSVOptions
		if importDelimiter != "" {
			opts.Delimiter = []rune(importDelimiter)[0]
		}

		res, err := importer.NewCSV(st, opts).Import(ctx, f)
		if err != nil {
			return eris.Wrap(err, "import csv")
		}
		reportImport(res)
		return nil
	},
}

var (
	importXLSXFile   string
	importSheetName  string
	importSheetIndex int
)

var outcomeImportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Import outcomes from a spreadsheet",
	Long: `Imports case outcomes from an .xlsx workbook, first sheet unless
--sheet or --sheet-index says otherwise.

Examples:
  dispute-cli outcome import xlsx --file utfall.xlsx
  dispute-cli outcome import xlsx --file utfall.xlsx --sheet "Avsluttede saker"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := importer.NewXLSX(st, importer.XLSXOptions{
			SheetName:  importSheetName,
			SheetIndex: importSheetIndex,
		}).Import(ctx, importXLSXFile)
		if err != nil {
			return eris.Wrap(err, "import xlsx")
		}
		reportImport(res)
		return nil
	},
}

var (
	importSince string
	importLimit int
)

var outcomeImportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Import closed cases from Salesforce",
	Long: `Pulls closed cases with recorded outcomes from the configured
Salesforce org. Salesforce case IDs become record IDs, so re-running the
import reproduces the same ledger.

Examples:
  dispute-cli outcome import salesforce
  dispute-cli outcome import salesforce --since 2024-01-01 --limit 500`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		opts := importer.SalesforceOptions{Limit: importLimit}
		if importSince != "" {
			since, err := time.Parse("2006-01-02", importSince)
			if err != nil {
				return eris.Wrapf(err, "parse --since %q", importSince)
			}
			opts.ClosedSince = since
		}

		res, err := importer.NewSalesforce(st, sfClient, opts).Import(ctx)
		if err != nil {
			return eris.Wrap(err, "import salesforce")
		}
		reportImport(res)
		return nil
	},
}

// reportImport prints the import summary, skipped rows to stderr.
func reportImport(res *importer.Result) {
	zap.L().Info("import complete",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)),
	)
	fmt.Printf("%d outcomes imported, %d skipped\n", res.Imported, len(res.Skipped))
	for _, skip := range res.Skipped {
		fmt.Fprintf(os.Stderr, "  row %d skipped: %v\n", skip.Row, skip.Err)
	}
}

func init() {
	outcomeRecordCmd.Flags().StringVar(&recordCaseID, "case-id", "", "case ID (generated when empty)")
	outcomeRecordCmd.Flags().StringSliceVar(&recordTypes, "types", nil, "contradiction types found in the case (required)")
	outcomeRecordCmd.Flags().StringVar(&recordOutcome, "outcome", "", "case outcome: won, settled or lost (required)")
	outcomeRecordCmd.Flags().Float64Var(&recordAmount, "amount", 0, "settlement amount in NOK")
	outcomeRecordCmd.Flags().IntVar(&recordDays, "days", 0, "days from first letter to resolution")
	outcomeRecordCmd.Flags().Float64Var(&recordConfidence, "confidence", 0, "win probability estimated at case start (0-1)")
	outcomeRecordCmd.Flags().Float64Var(&recordActual, "actual", 0, "actual outcome on a 0-1 scale")
	_ = outcomeRecordCmd.MarkFlagRequired("types")
	_ = outcomeRecordCmd.MarkFlagRequired("outcome")

	outcomeImportCSVCmd.Flags().StringVar(&importCSVFile, "file", "", "path to the CSV file (required)")
	outcomeImportCSVCmd.Flags().StringVar(&importDelimiter, "delimiter", "", `field delimiter (default ","; Norwegian exports often use ";")`)
	_ = outcomeImportCSVCmd.MarkFlagRequired("file")

	outcomeImportXLSXCmd.Flags().StringVar(&importXLSXFile, "file", "", "path to the .xlsx workbook (required)")
	outcomeImportXLSXCmd.Flags().StringVar(&importSheetName, "sheet", "", "sheet name (default: first sheet)")
	outcomeImportXLSXCmd.Flags().IntVar(&importSheetIndex, "sheet-index", 0, "sheet index when --sheet is not set")
	_ = outcomeImportXLSXCmd.MarkFlagRequired("file")

	outcomeImportSalesforceCmd.Flags().StringVar(&importSince, "since", "", "only cases closed on or after this date (YYYY-MM-DD)")
	outcomeImportSalesforceCmd.Flags().IntVar(&importLimit, "limit", 0, "max cases to pull (default 1000)")

	outcomeImportCmd.AddCommand(outcomeImportCSVCmd)
	outcomeImportCmd.AddCommand(outcomeImportXLSXCmd)
	outcomeImportCmd.AddCommand(outcomeImportSalesforceCmd)
	outcomeCmd.AddCommand(outcomeRecordCmd)
	outcomeCmd.AddCommand(outcomeImportCmd)
	rootCmd.AddCommand(outcomeCmd)
}
