package outwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/parquet"
	"github.com/capcurve/capcurve/schema"
)

// DefaultExportBase is the output base name when none is configured.
const DefaultExportBase = "capcurve_export"

// Export writes the monthly and weekly series from a report to a pair
// of files derived from the configured output name, one per series.
func Export(cfg *contract.Config, report *schema.Report) error {
	base := exportBase(cfg.OutputFile)

	switch cfg.Output {
	case schema.ParquetOut:
		return exportParquet(base, report)
	case schema.JSONOut:
		return exportJSON(base, report)
	case schema.CSVOut, schema.TextOut:
		return exportCSV(base, report)
	default:
		return fmt.Errorf("unsupported export format: %s", cfg.Output)
	}
}

// exportBase strips a recognized extension so "out.csv" and "out" both
// yield the sibling files out_monthly.* and out_weekly.*.
func exportBase(outputFile string) string {
	if outputFile == "" {
		return DefaultExportBase
	}
	ext := filepath.Ext(outputFile)
	switch strings.ToLower(ext) {
	case ".csv", ".json", ".parquet":
		return strings.TrimSuffix(outputFile, ext)
	}
	return outputFile
}

func exportParquet(base string, report *schema.Report) error {
	monthlyPath := base + "_monthly.parquet"
	weeklyPath := base + "_weekly.parquet"

	monthly := parquet.ConvertMonthlyBuckets(report.Monthly, report.Models)
	if err := parquet.WriteMonthlyParquet(monthly, monthlyPath); err != nil {
		return fmt.Errorf("failed to export monthly parquet: %w", err)
	}

	weekly := parquet.ConvertWeeklyBuckets(report.Weekly)
	if err := parquet.WriteWeeklyParquet(weekly, weeklyPath); err != nil {
		return fmt.Errorf("failed to export weekly parquet: %w", err)
	}

	fmt.Fprintf(os.Stderr, "💾 Wrote parquet export to %s and %s\n", monthlyPath, weeklyPath)
	return nil
}

func exportJSON(base string, report *schema.Report) error {
	monthlyPath := base + "_monthly.json"
	weeklyPath := base + "_weekly.json"

	if err := writeJSONFile(monthlyPath, report.Monthly); err != nil {
		return fmt.Errorf("failed to export monthly JSON: %w", err)
	}
	if err := writeJSONFile(weeklyPath, report.Weekly); err != nil {
		return fmt.Errorf("failed to export weekly JSON: %w", err)
	}

	fmt.Fprintf(os.Stderr, "💾 Wrote JSON export to %s and %s\n", monthlyPath, weeklyPath)
	return nil
}

func writeJSONFile(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return writeJSON(file, data)
}

func exportCSV(base string, report *schema.Report) error {
	monthlyPath := base + "_monthly.csv"
	weeklyPath := base + "_weekly.csv"

	if err := writeMonthlyCSV(monthlyPath, report); err != nil {
		return fmt.Errorf("failed to export monthly CSV: %w", err)
	}
	if err := writeWeeklyCSV(weeklyPath, report.Weekly); err != nil {
		return fmt.Errorf("failed to export weekly CSV: %w", err)
	}

	fmt.Fprintf(os.Stderr, "💾 Wrote CSV export to %s and %s\n", monthlyPath, weeklyPath)
	return nil
}

func writeMonthlyCSV(path string, report *schema.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	predicted := map[string]int{}
	if report.Models.Capability != nil {
		for _, p := range report.Models.Capability.Projection {
			predicted[p.Month] = p.PredictedCapability
		}
	}

	header := []string{
		"month", "commits", "capability", "sophistication",
		"cumulative_commits", "cumulative_capability", "predicted_capability",
	}
	return writeCSVWithHeader(file, header, func(cw *csv.Writer) error {
		for _, b := range report.Monthly {
			pred := ""
			if p, ok := predicted[b.Month]; ok {
				pred = strconv.Itoa(p)
			}
			row := []string{
				b.Month,
				strconv.Itoa(b.Commits),
				strconv.Itoa(b.Capability),
				fmt.Sprintf("%.3f", b.Sophistication),
				strconv.Itoa(b.CumulativeCommits),
				strconv.Itoa(b.CumulativeCapability),
				pred,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

func writeWeeklyCSV(path string, weekly []schema.WeeklyBucket) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	header := []string{"week", "start", "commits", "capability"}
	return writeCSVWithHeader(file, header, func(cw *csv.Writer) error {
		for _, b := range weekly {
			row := []string{
				strconv.Itoa(b.Week),
				b.Start,
				strconv.Itoa(b.Commits),
				strconv.Itoa(b.Capability),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
