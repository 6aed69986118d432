package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// statusDocument is the combined JSON form of the status command output.
type statusDocument struct {
	Caches  []schema.CacheStatus  `json:"caches"`
	History *schema.HistoryStatus `json:"history,omitempty"`
}

// PrintStatus outputs the state of the on-disk caches and, when a
// backend is configured, the run history archive.
func PrintStatus(cfg *contract.Config, caches []schema.CacheStatus, hist *schema.HistoryStatus) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, statusDocument{Caches: caches, History: hist})
		}, "Wrote status JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if err := writeCacheStatusTable(w, caches); err != nil {
			return err
		}
		if hist != nil {
			fmt.Fprintln(w)
			writeHistoryStatus(w, hist)
		}
		return nil
	}, "Wrote status table")
}

func writeCacheStatusTable(w io.Writer, caches []schema.CacheStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Cache", "Exists", "Version", "Entries", "Size", "Modified"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range caches {
		data = append(data, []string{
			c.Name,
			strconv.FormatBool(c.Exists),
			strconv.Itoa(c.Version),
			humanInt(c.Entries),
			humanBytes(c.SizeBytes),
			orEmpty(c.ModifiedTime),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeHistoryStatus(w io.Writer, hist *schema.HistoryStatus) {
	fmt.Fprintf(w, "History backend: %s\n", hist.Backend)
	if !hist.Connected {
		fmt.Fprintln(w, "  Not connected.")
		return
	}
	fmt.Fprintf(w, "  Total runs:  %d\n", hist.TotalRuns)
	if hist.TotalRuns > 0 {
		fmt.Fprintf(w, "  Last run:    #%d at %s\n", hist.LastRunID, hist.LastRunTime.Format(schema.TimestampFormat))
		fmt.Fprintf(w, "  Oldest run:  %s\n", hist.OldestRunTime.Format(schema.TimestampFormat))
	}
	for name, size := range hist.TableSizes {
		fmt.Fprintf(w, "  Table %s: %d rows\n", name, size)
	}
}

// humanBytes renders a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}

func orEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
