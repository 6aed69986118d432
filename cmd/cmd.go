// Package cmd defines the command-line interface for capcurve.
package cmd

import (
	"github.com/capcurve/capcurve/core/aggregate"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding the scan config, caches and reports")
	rootCmd.PersistentFlags().String("scan-config", "", "Path to the scan settings file (default <data-dir>/config.json)")
	rootCmd.PersistentFlags().String("trusted-root", "", "Root directory that configured scan paths must resolve under (default $HOME)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in console output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", "info", "Minimum log level for the web server (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("format", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().StringP("out", "o", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "Run archive backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scanCmd to Viper
	scanCmd.Flags().String("enrich", "", "Classify commits with an external model: haiku or sonnet")
	scanCmd.Flags().String("api-base", "", "Override the classifier API base URL")
	scanCmd.Flags().String("secret-id", "", "AWS Secrets Manager id holding the classifier API key")
	scanCmd.Flags().Bool("no-cache", false, "Ignore and rebuild the score, diffstat and enrichment caches")
	scanCmd.Flags().Float64("alpha", aggregate.DefaultSmoothingAlpha, "Exponential smoothing factor for sophistication, in (0, 1]")
	if err := viper.BindPFlags(scanCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scan flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("host", contract.DefaultHost, "Host interface to bind")
	serveCmd.Flags().IntP("port", "p", contract.DefaultPort, "Port to listen on")
	serveCmd.Flags().String("static-dir", "", "Dashboard directory served at / (default <data-dir>)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyCmd to Viper
	historyCmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Number of archived runs to list")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}

	// Bind all flags of impactCmd to Viper
	impactCmd.Flags().String("token", "", "GitHub API token (defaults to GITHUB_TOKEN)")
	if err := viper.BindPFlags(impactCmd.Flags()); err != nil {
		contract.LogFatal("Error binding impact flags", err)
	}
}
