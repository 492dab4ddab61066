package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/export"
	"github.com/medhold/dispute-cli/pkg/notion"
)

var (
	analyzeJSONPath string
	analyzeNotion   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <letter>",
	Short: "Analyze a single response letter",
	Long: `Analyzes one letter for contradictions and manipulation tactics and
prints the findings, case merit, and recommended counter-strategies.

The letter is a local text file, "-" for stdin, an http(s) URL, or an
ftp URL.

Examples:
  # Local file
  dispute-cli analyze avslag.txt

  # From stdin
  pdftotext avslag.pdf - | dispute-cli analyze -

  # Remote letter, report as JSON
  dispute-cli analyze https://example.com/letters/avslag.txt --json report.json

  # Push findings to the Notion findings database afterwards
  dispute-cli analyze avslag.txt --notion`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		if analyzeNotion {
			if err := cfg.Validate("export"); err != nil {
				return err
			}
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

		docs, err := newResolver().Resolve(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "resolve letter")
		}
		if len(docs) != 1 {
			return eris.Errorf("analyze expects a single letter, %q resolves to %d; use batch", args[0], len(docs))
		}

		report, err := analyzer.Analyze(ctx, docs[0])
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if analyzeJSONPath != "" {
			if err := writeReportJSON(analyzeJSONPath, report); err != nil {
				return err
			}
		}

		renderReport(os.Stdout, report)

		if analyzeNotion {
			client := notion.NewClient(cfg.Notion.Token)
			created, err := export.NewNotion(client, cfg.Notion.FindingsDB).Export(ctx, report)
			if err != nil {
				return eris.Wrap(err, "export findings")
			}
			zap.L().Info("findings exported",
				zap.Int("pages", created),
				zap.String("report_id", report.ID),
			)
		}

		return nil
	},
}

// writeReportJSON writes the report to path, or stdout when path is "-".
func writeReportJSON(path string, report any) error {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create report file")
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJSONPath, "json", "", `write the report as JSON to this path ("-" for stdout)`)
	analyzeCmd.Flags().BoolVar(&analyzeNotion, "notion", false, "push findings to the Notion findings database")
	rootCmd.AddCommand(analyzeCmd)
}
