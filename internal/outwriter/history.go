package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// PrintRunHistory outputs archived scan runs as a table, CSV or JSON
// depending on the configured output mode.
func PrintRunHistory(cfg *contract.Config, records []schema.RunRecord) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote run history JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunHistoryCSV(w, records)
		}, "Wrote run history CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunHistoryTable(w, records)
		}, "Wrote run history table")
	}
}

func writeRunHistoryCSV(w io.Writer, records []schema.RunRecord) error {
	header := []string{
		"run_id", "scan_time", "scoring_method", "repos_scanned", "total_commits",
		"total_capability", "pct_of_asymptote", "convergence_date", "capability_L",
		"capability_r2", "commit_rate_r2", "duration_ms",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := []string{
				strconv.FormatInt(r.RunID, 10),
				r.ScanTime.Format(schema.TimestampFormat),
				r.ScoringMethod,
				strconv.Itoa(int(r.ReposScanned)),
				strconv.Itoa(int(r.TotalCommits)),
				fmt.Sprintf("%.1f", r.TotalCapability),
				fmt.Sprintf("%.1f", r.PctOfAsymptote),
				orDash(r.ConvergenceDate),
				strconv.Itoa(int(r.CapabilityL)),
				fmt.Sprintf("%.4f", r.CapabilityR2),
				fmt.Sprintf("%.4f", r.CommitRateR2),
				strconv.FormatInt(r.DurationMS, 10),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

func writeRunHistoryTable(w io.Writer, records []schema.RunRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No archived runs found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Scan Time", "Method", "Repos", "Commits", "Capability", "% Asym", "Convergence"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range records {
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.ScanTime.Format(schema.TimestampFormat),
			r.ScoringMethod,
			strconv.Itoa(int(r.ReposScanned)),
			humanInt(int(r.TotalCommits)),
			humanInt(int(r.TotalCapability)),
			fmt.Sprintf("%.1f%%", r.PctOfAsymptote),
			orDash(r.ConvergenceDate),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintHistoryEntries outputs the file-backed convergence history. It is
// the fallback when no database backend archives runs.
func PrintHistoryEntries(cfg *contract.Config, entries []schema.HistoryEntry) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote convergence history JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeHistoryEntriesTable(w, entries)
	}, "Wrote convergence history table")
}

func writeHistoryEntriesTable(w io.Writer, entries []schema.HistoryEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No convergence history recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Scan Time", "Method", "Commits", "Capability", "% Asym", "Convergence", "Days Left"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, e := range entries {
		days := "-"
		if e.DaysUntilConvergence != nil {
			days = strconv.Itoa(*e.DaysUntilConvergence)
		}
		data = append(data, []string{
			e.ScanTime,
			string(e.ScoringMethod),
			humanInt(e.TotalCommits),
			humanInt(e.TotalCapability),
			fmt.Sprintf("%.1f%%", e.PctOfAsymptote),
			orDash(e.ConvergenceDate),
			days,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
