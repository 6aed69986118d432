package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/outwriter"
	"github.com/capcurve/capcurve/internal/runstore"
	"github.com/capcurve/capcurve/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultHistoryLimit is how many archived runs the listing shows.
const defaultHistoryLimit = 20

// historyCmd lists archived scan runs, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived scan runs.",
	Long: `List archived scan runs from the configured history backend, newest
first. When the backend is none the listing falls back to the
convergence outcomes recorded in history.json.`,
	Example: `  capcurve history
  capcurve history --limit 5 --format json
  capcurve history --history-backend none`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		limit := viper.GetInt("limit")
		if limit < 1 {
			return fmt.Errorf("limit must be at least 1 (received %d)", limit)
		}

		if cfg.HistoryBackend == schema.NoneBackend {
			entries := core.LoadHistory(filepath.Join(cfg.DataDir, schema.HistoryFileName))
			return outwriter.PrintHistoryEntries(cfg, entries)
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		records, err := store.List(limit)
		if err != nil {
			return fmt.Errorf("listing archived runs: %w", err)
		}
		return outwriter.PrintRunHistory(cfg, records)
	},
}

// historyMigrateCmd manages the history database schema directly.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run history database schema migrations.",
	Long: `Migrate the history database schema to a target version. The default
target is the latest version; 0 rolls back every migration.`,
	Example: `  capcurve history migrate
  capcurve history migrate --target-version 0`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		connStr := cfg.HistoryDBConnect
		if cfg.HistoryBackend == schema.SQLiteBackend && connStr == "" {
			connStr = contract.DefaultHistoryDBPath(cfg.DataDir)
		}

		targetVersion := viper.GetInt("target-version")
		if err := runstore.Migrate(cfg.HistoryBackend, connStr, targetVersion); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		if targetVersion < 0 {
			fmt.Println("History database migrated to the latest version.")
		} else {
			fmt.Printf("History database migrated to version %d.\n", targetVersion)
		}
		return nil
	},
}
