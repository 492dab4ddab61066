package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the outcome store schema",
	Long: `Applies the store schema for the configured backend. Safe to run
repeatedly; existing data is never touched. The analyze and outcome
commands migrate on startup too, so this is mainly for preparing a
Postgres database ahead of a deploy.

Examples:
  dispute-cli migrate
  DISPUTE_STORE_BACKEND=postgres DISPUTE_STORE_DATABASE_URL=postgres://... dispute-cli migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("store migrated", zap.String("backend", cfg.Store.Backend))
		fmt.Fprintf(os.Stdout, "store schema up to date (%s)\n", cfg.Store.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
