package cmd

import (
	"fmt"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/jsoncache"
	"github.com/capcurve/capcurve/internal/outwriter"
	"github.com/capcurve/capcurve/schema"
	"github.com/spf13/cobra"
)

// cacheCmd groups the cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the scan caches.",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// cacheStatusCmd reports the JSON caches and the history store.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache file and history store status.",
	Long: `Report the score, diffstat and enrichment cache files (existence,
version, entry count, size, modification time) plus the history store
connection state and row counts.`,
	Example: `  capcurve cache status
  capcurve cache status --format json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		caches := []schema.CacheStatus{
			jsoncache.LoadScoreCache(cfg.DataDir).Status(),
			jsoncache.LoadDiffstatCache(cfg.DataDir).Status(),
			jsoncache.LoadEnrichCache(cfg.DataDir).Status(),
		}

		var hist *schema.HistoryStatus
		if cfg.HistoryBackend != schema.NoneBackend {
			store, err := openHistoryStore()
			if err != nil {
				contract.LogWarn("history store unavailable", err)
			} else {
				defer func() { _ = store.Close() }()
				status, err := store.GetStatus()
				if err != nil {
					contract.LogWarn("could not read history store status", err)
				} else {
					hist = &status
				}
			}
		}

		return outwriter.PrintStatus(cfg, caches, hist)
	},
}

// cacheClearCmd removes every cache file from the data directory.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the score, diffstat and enrichment cache files.",
	Long: `Remove every cache file from the data directory. The next scan
rebuilds them from scratch. The report, history file and history
database are untouched.`,
	Example: `  capcurve cache clear
  capcurve cache clear --data-dir ~/capcurve`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		removed, err := jsoncache.ClearAll(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("clearing caches: %w", err)
		}
		if len(removed) == 0 {
			fmt.Println("No cache files to remove.")
			return nil
		}
		for _, name := range removed {
			fmt.Printf("Removed %s\n", name)
		}
		return nil
	},
}
