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

// PrintIssueImpacts outputs ranked issue impact estimates as a table,
// CSV or JSON depending on the configured output mode.
func PrintIssueImpacts(cfg *contract.Config, impacts []schema.IssueImpact) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, impacts)
		}, "Wrote issue impacts JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeImpactCSV(w, impacts)
		}, "Wrote issue impacts CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeImpactTable(w, impacts, cfg)
		}, "Wrote issue impacts table")
	}
}

func writeImpactCSV(w io.Writer, impacts []schema.IssueImpact) error {
	header := []string{"number", "title", "score", "impact_days"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, imp := range impacts {
			row := []string{
				strconv.Itoa(imp.Number),
				imp.Title,
				fmt.Sprintf("%.1f", imp.Score),
				fmt.Sprintf("%.1f", imp.ImpactDays),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

func writeImpactTable(w io.Writer, impacts []schema.IssueImpact, cfg *contract.Config) error {
	if len(impacts) == 0 {
		fmt.Fprintln(w, "No open issues to estimate.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Issue", "Title", "Score", "Impact (days)"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := terminalWidth(cfg) / 2
	var data [][]string
	for _, imp := range impacts {
		data = append(data, []string{
			"#" + strconv.Itoa(imp.Number),
			truncateName(imp.Title, titleWidth),
			fmt.Sprintf("%.1f", imp.Score),
			fmt.Sprintf("%.1f", imp.ImpactDays),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
