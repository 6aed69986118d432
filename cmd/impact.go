package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// impactCmd ranks open GitHub issues by projected convergence impact.
var impactCmd = &cobra.Command{
	Use:   "impact <owner>/<repo>",
	Short: "Rank open GitHub issues by projected convergence impact.",
	Long: `Fetch the open issues of a GitHub repository, score each title and
body against the capability rubric and estimate how many days
completing it would move the projected convergence date, using the
capability model from the latest scan.

Authentication uses --token or the GITHUB_TOKEN environment variable.`,
	Example: `  capcurve impact golang/go
  capcurve impact acme/agentd --format json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		owner, name, ok := strings.Cut(args[0], "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("repository must be given as <owner>/<repo> (received %q)", args[0])
		}

		token := viper.GetString("token")
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("a GitHub token is required; set --token or GITHUB_TOKEN")
		}

		report, err := loadLatestReport()
		if err != nil {
			return err
		}

		rubric, err := scoring.NewRubric(cfg.Categories, cfg.HighLevel, cfg.LowLevel)
		if err != nil {
			return fmt.Errorf("compiling rubric: %w", err)
		}

		issues, err := core.FetchOpenIssues(rootCtx, core.NewIssueClient(), owner, name, token)
		if err != nil {
			return err
		}

		impacts := core.RankIssueImpacts(rubric, issues, report.Models)
		return outwriter.PrintIssueImpacts(cfg, impacts)
	},
}
