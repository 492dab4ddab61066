package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

var (
	statsRecent  int
	statsOutcome string
	statsType    string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show success rates and settlement statistics from recorded outcomes",
	Long: `Summarizes the outcome history: per-contradiction-type win rates,
settlement amounts, and optionally the most recent case records.

Examples:
  dispute-cli stats
  dispute-cli stats --json
  dispute-cli stats --recent 20
  dispute-cli stats --recent 50 --outcome won --type settlement_contradiction`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.Snapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "snapshot outcomes")
		}

		if statsJSON {
			return writeReportJSON("-", snap)
		}

		renderSnapshot(os.Stdout, snap)

		if statsRecent > 0 {
			filter := learning.Filter{
				Outcome: model.Outcome(statsOutcome),
				Type:    statsType,
				Limit:   statsRecent,
			}
			records, err := st.History(ctx, filter)
			if err != nil {
				return eris.Wrap(err, "list outcome history")
			}
			fmt.Fprintln(os.Stdout)
			renderHistory(os.Stdout, records)
		}
		return nil
	},
}

func renderSnapshot(out io.Writer, snap *learning.Snapshot) {
	fmt.Fprintf(out, "Recorded outcomes: %d (as of %s)\n\n", snap.Records, snap.TakenAt.Format("2006-01-02 15:04"))

	if len(snap.Rates) == 0 {
		fmt.Fprintln(out, "No outcomes recorded yet. Use `dispute-cli outcome record` or `dispute-cli outcome import`.")
		return
	}

	types := make([]string, 0, len(snap.Rates))
	for t := range snap.Rates {
		types = append(types, t)
	}
	sort.Strings(types)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTOTAL\tSUCCESSFUL\tWIN RATE")
	fmt.Fprintln(w, "----\t-----\t----------\t--------")
	for _, t := range types {
		rate := snap.Rates[t]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f%%\n", t, rate.TotalCases, rate.SuccessfulCases, rate.WinRate()*100)
	}
	w.Flush()

	if len(snap.Settlements) > 0 {
		var sum float64
		for _, s := range snap.Settlements {
			sum += s.Amount
		}
		mean := sum / float64(len(snap.Settlements))
		fmt.Fprintf(out, "\nSettlements: %d recorded, mean %s\n", len(snap.Settlements), nortext.FormatNOK(mean))
	}
}

func renderHistory(out io.Writer, records []model.CaseLearningRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No records match the filter.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tCASE\tOUTCOME\tSETTLEMENT\tDAYS\tTYPES")
	fmt.Fprintln(w, "--------\t----\t-------\t----------\t----\t-----")
	for _, rec := range records {
		settlement := "-"
		if rec.SettlementAmount != nil {
			settlement = nortext.FormatNOK(*rec.SettlementAmount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.RecordedAt.Format("2006-01-02"),
			rec.ID,
			rec.Outcome,
			settlement,
			rec.TimeToResolutionDays,
			strings.Join(rec.ContradictionTypes, ","),
		)
	}
	w.Flush()
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "also list the N most recent case records")
	statsCmd.Flags().StringVar(&statsOutcome, "outcome", "", "filter recent records by outcome (won, settled, lost)")
	statsCmd.Flags().StringVar(&statsType, "type", "", "filter recent records by contradiction type")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the raw snapshot as JSON")

	rootCmd.AddCommand(statsCmd)
}
