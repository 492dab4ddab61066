package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/export"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/notion"
)

var exportCmd = &cobra.Command{
	Use:   "export <report.json>",
	Short: "Push findings from a saved report to Notion",
	Long: `Reads a report written by analyze --json or batch --output-dir and
creates one page per finding in the configured Notion database.

Requires notion.token and notion.findings_db (DISPUTE_NOTION_TOKEN,
DISPUTE_NOTION_FINDINGS_DB).

Examples:
  dispute-cli analyze avslag.txt --json report.json
  dispute-cli export report.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read report")
		}
		var report model.AnalysisReport
		if err := json.Unmarshal(data, &report); err != nil {
			return eris.Wrapf(err, "parse report %s", args[0])
		}
		if report.ID == "" {
			return eris.Errorf("%s does not look like an analysis report", args[0])
		}

		client := notion.NewClient(cfg.Notion.Token)
		exporter := export.NewNotion(client, cfg.Notion.FindingsDB)
		n, err := exporter.Export(cmd.Context(), &report)
		if err != nil {
			return eris.Wrap(err, "export findings")
		}

		zap.L().Info("findings exported",
			zap.String("report", report.ID),
			zap.Int("pages", n))
		fmt.Fprintf(os.Stdout, "%d findings exported to Notion\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
