package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/medhold/dispute-cli/internal/patterns"
)

var (
	patternsListFile     string
	patternsValidateFile string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and validate pattern catalogs",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active pattern catalog",
	Long: `Prints the claim detectors, tactic rules and contradiction pairs of the
active catalog: the built-in one, the file named by patterns.file, or the
file given with --file.

Examples:
  dispute-cli patterns list
  dispute-cli patterns list --file configs/patterns.example.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var lib *patterns.Library
		var err error
		if patternsListFile != "" {
			lib, err = patterns.LoadFile(patternsListFile)
		} else {
			lib, err = loadLibrary()
		}
		if err != nil {
			return err
		}
		renderCatalog(os.Stdout, lib)
		return nil
	},
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a pattern catalog file",
	Long: `Loads a YAML pattern catalog and runs the same validation the analyzer
applies at startup. Exits non-zero with the first problem found.

Examples:
  dispute-cli patterns validate --file configs/patterns.example.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := patterns.LoadFile(patternsValidateFile)
		if err != nil {
			return eris.Wrapf(err, "validate %s", patternsValidateFile)
		}
		fmt.Fprintf(os.Stdout, "catalog OK: %d claim detectors, %d tactic rules, %d contradiction pairs\n",
			len(lib.Detectors()), len(lib.Tactics()), lib.Table().Len())
		return nil
	},
}

func renderCatalog(out io.Writer, lib *patterns.Library) {
	detectors := lib.Detectors()
	fmt.Fprintf(out, "Claim detectors (%d):\n", len(detectors))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLAIM KEY\tPHRASES\tKEYWORDS")
	fmt.Fprintln(w, "--\t---------\t-------\t--------")
	for _, p := range detectors {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.ID, p.ClaimKey, len(p.Phrases), len(p.Keywords))
	}
	w.Flush()

	tactics := lib.Tactics()
	fmt.Fprintf(out, "\nTactic rules (%d):\n", len(tactics))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSTRENGTH\tPHRASES\tKEYWORDS")
	fmt.Fprintln(w, "--\t--------\t--------\t-------\t--------")
	for _, p := range tactics {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%d\n", p.ID, p.Category, p.Strength, len(p.Phrases), len(p.Keywords))
	}
	w.Flush()

	pairs := lib.Table().Pairs()
	fmt.Fprintf(out, "\nContradiction pairs (%d):\n", len(pairs))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINDING TYPE\tCLAIMS\tPOLARITY\tBASE RATE")
	fmt.Fprintln(w, "------------\t------\t--------\t---------")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s + %s\t%s\t%.2f\n", p.FindingType, p.A, p.B, p.Polarities, p.BaseRate)
	}
	w.Flush()
}

func init() {
	patternsListCmd.Flags().StringVar(&patternsListFile, "file", "", "catalog file to list instead of the active one")

	patternsValidateCmd.Flags().StringVar(&patternsValidateFile, "file", "", "catalog file to validate (required)")
	_ = patternsValidateCmd.MarkFlagRequired("file")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsValidateCmd)
	rootCmd.AddCommand(patternsCmd)
}
