package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

// renderReport writes the human-readable analysis summary.
func renderReport(out io.Writer, report *model.AnalysisReport) {
	fmt.Fprintf(out, "Report %s (%s)\n", report.ID, report.DocumentID)
	fmt.Fprintf(out, "Statements: %d, findings: %d, duration: %dms\n\n",
		report.Statements, len(report.Findings), report.DurationMS)

	if len(report.Findings) == 0 {
		fmt.Fprintln(out, "No contradictions or pressure tactics detected.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tCATEGORY\tSEVERITY\tCONF\tEVIDENCE")
		fmt.Fprintln(w, "----\t--------\t--------\t----\t--------")
		for _, f := range report.Findings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
				f.Type, f.Category, f.Severity, f.Confidence, evidenceCell(f.Evidence))
		}
		w.Flush()
	}

	if report.Merit != nil {
		fmt.Fprintf(out, "\nMerit: %s (win probability %.0f%%, estimated value %s)\n",
			report.Merit.Merit,
			report.Merit.WinProbability*100,
			nortext.FormatNOK(report.Merit.EstimatedValue),
		)
		fmt.Fprintln(out, report.Merit.RecommendationText)
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRIORITY\tTYPE\tSTRATEGY\tLEGAL BASIS")
		fmt.Fprintln(w, "--------\t----\t--------\t-----------")
		for _, r := range report.Recommendations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Priority, r.FindingType, r.Strategy, r.LegalBasis)
		}
		w.Flush()
	}

	if len(report.References) > 0 {
		fmt.Fprintln(out, "\nReferences:")
		for _, ref := range report.References {
			fmt.Fprintf(out, "  %s: %s\n", ref.FindingType, formatReference(ref))
		}
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(out, "\nwarning: %s: %s\n", warning.Code, warning.Message)
	}
}

// evidenceCell compacts evidence quotes into one table cell. Truncation is
// rune-based so Norwegian letters survive the cut.
func evidenceCell(evidence []string) string {
	cell := strings.Join(evidence, " | ")
	if runes := []rune(cell); len(runes) > 60 {
		cell = string(runes[:57]) + "..."
	}
	return cell
}

func formatReference(ref model.LegalReference) string {
	var parts []string
	for _, p := range ref.Provisions {
		if p.Section != "" {
			parts = append(parts, p.Statute+" "+p.Section)
		} else {
			parts = append(parts, p.Statute)
		}
	}
	for _, p := range ref.Precedents {
		parts = append(parts, p.Citation)
	}
	return strings.Join(parts, ", ")
}
