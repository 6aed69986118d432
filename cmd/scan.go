package cmd

import (
	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/spf13/cobra"
)

// scanCmd runs one full scoring pass over the configured repositories.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan repositories, score commits and refit the growth models.",
	Long: `Discover Git repositories, score every commit against the capability
rubric, aggregate monthly and weekly series, fit the commit-rate and
capability curves and write the full report to data.json.

Repeat runs reuse the score, diffstat and enrichment caches, so only
commits new since the last scan are scored from scratch.`,
	Example: `  capcurve scan
  capcurve scan --data-dir ~/capcurve --no-cache
  capcurve scan --enrich haiku --alpha 0.3`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		client := contract.NewLocalGitClient()
		_, err = core.Run(rootCtx, cfg, client, store)
		return err
	},
}
