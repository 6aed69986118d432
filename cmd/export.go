package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/capcurve/capcurve/internal/outwriter"
	"github.com/capcurve/capcurve/schema"
	"github.com/spf13/cobra"
)

// exportCmd writes the monthly and weekly series from the latest report.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the monthly and weekly series from the latest report.",
	Long: `Export the aggregated monthly and weekly series from the latest
data.json report as CSV, JSON or Parquet. Two files are written, one
per series, named after the --out base path.`,
	Example: `  capcurve export --format csv --out series
  capcurve export --format parquet --out /tmp/capcurve_series.parquet`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		report, err := loadLatestReport()
		if err != nil {
			return err
		}
		return outwriter.Export(cfg, report)
	},
}

// loadLatestReport reads the report written by the most recent scan.
func loadLatestReport() (*schema.Report, error) {
	path := filepath.Join(cfg.DataDir, schema.DataFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no report at %s. Run 'capcurve scan' first", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}

	var report schema.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &report, nil
}
