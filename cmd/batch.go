package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/pipeline"
)

var (
	batchOutputDir string
	batchLimit     int
)

var batchCmd = &cobra.Command{
	Use:   "batch <location>...",
	Short: "Analyze a batch of response letters",
	Long: `Resolves each location to letters and analyzes them concurrently.
A location is a text file, a directory of .txt files, a glob, an http(s)
URL, or an ftp URL (trailing slash for a directory listing).

Examples:
  # Every letter in a directory
  dispute-cli batch ./letters/

  # Mixed sources, reports written per letter
  dispute-cli batch avslag.txt ftp://arkiv.example.no/saker/ --output-dir reports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		analyzer, err := buildAnalyzer(st)
		if err != nil {
			return err
		}

		resolver := newResolver()
		var docs []model.Document
		for _, location := range args {
			resolved, err := resolver.Resolve(ctx, location)
			if err != nil {
				return eris.Wrapf(err, "resolve %s", location)
			}
			docs = append(docs, resolved...)
		}
		if batchLimit > 0 && len(docs) > batchLimit {
			docs = docs[:batchLimit]
		}

		zap.L().Info("analyzing batch",
			zap.Int("letters", len(docs)),
			zap.Int("concurrency", cfg.Batch.Concurrency),
		)

		items, err := analyzer.AnalyzeBatch(ctx, docs)
		if err != nil {
			return err
		}

		if batchOutputDir != "" {
			if err := writeBatchReports(batchOutputDir, items); err != nil {
				return err
			}
		}

		formatBatchSummary(os.Stdout, items)
		return nil
	},
}

// writeBatchReports writes one JSON report per analyzed letter, named after
// the report ID.
func writeBatchReports(dir string, items []pipeline.BatchItem) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	for _, it := range items {
		if it.Report == nil {
			continue
		}
		path := filepath.Join(dir, it.Report.ID+".json")
		if err := writeReportJSON(path, it.Report); err != nil {
			return err
		}
	}
	return nil
}

func formatBatchSummary(out io.Writer, items []pipeline.BatchItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LETTER\tFINDINGS\tMERIT\tSTATUS")
	fmt.Fprintln(w, "------\t--------\t-----\t------")
	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t-\tfailed: %v\n", it.DocumentID, it.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\tok\n",
			it.DocumentID, len(it.Report.Findings), it.Report.Merit.Merit)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d analyzed, %d failed\n", len(items)-failed, failed)
}

func init() {
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "write one JSON report per letter into this directory")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of letters to analyze (0 = all)")
	rootCmd.AddCommand(batchCmd)
}
