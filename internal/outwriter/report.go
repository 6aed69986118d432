package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

const (
	bannerWidth     = 60
	topReposInTable = 10
)

var (
	headlineColor = color.New(color.FgCyan, color.Bold)
	goodColor     = color.New(color.FgGreen, color.Bold)
	warnColor     = color.New(color.FgYellow)
)

// WriteReport writes the full report document as indented JSON.
func WriteReport(path string, report *schema.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return writeJSON(file, report)
}

// PrintScanSummary renders the post-scan console summary: the headline
// metrics, the convergence outlook and the top contributing repos.
func PrintScanSummary(cfg *contract.Config, report *schema.Report, reportPath string) {
	paint := func(c *color.Color) func(a ...any) string {
		if cfg.UseColors {
			return c.SprintFunc()
		}
		return fmt.Sprint
	}
	emoji := func(e string) string {
		if cfg.UseEmojis {
			return e + " "
		}
		return ""
	}

	out := cfg.Progress()
	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(out, banner)
	fmt.Fprintf(out, "%s%s\n", emoji("📊"), paint(headlineColor)("Scan complete"))
	fmt.Fprintln(out, banner)

	fmt.Fprintf(out, "  Repos scanned:    %d\n", report.ReposScanned)
	fmt.Fprintf(out, "  Total commits:    %s\n", humanInt(report.TotalCommits))
	fmt.Fprintf(out, "  Capability score: %s\n", paint(headlineColor)(humanInt(report.Current.TotalCapability)))
	fmt.Fprintf(out, "  %% of asymptote:   %.1f%%\n", report.Current.PctOfAsymptote)
	fmt.Fprintf(out, "  Sophistication:   %.1f%%\n", report.Current.CurrentSophistication*100)
	fmt.Fprintf(out, "  Scoring method:   %s\n", report.ScoringMethod)

	printConvergenceLine(out, report, paint, emoji)

	if len(report.RepoStats) > 0 {
		fmt.Fprintln(out)
		printRepoStatsTable(out, report.RepoStats, cfg)
	}

	fmt.Fprintln(out, banner)
	fmt.Fprintf(out, "%sReport written to %s\n", emoji("💾"), reportPath)
}

func printConvergenceLine(out io.Writer, report *schema.Report, paint func(*color.Color) func(...any) string, emoji func(string) string) {
	conv := report.Models.ConvergenceDate
	if conv == nil {
		fmt.Fprintf(out, "  Convergence:      %s\n", paint(warnColor)("not yet estimable"))
		return
	}

	suffix := ""
	if len(report.ConvergenceHistory) > 0 {
		last := report.ConvergenceHistory[len(report.ConvergenceHistory)-1]
		if last.DaysUntilConvergence != nil {
			suffix = fmt.Sprintf(" (%d days)", *last.DaysUntilConvergence)
		}
	}
	fmt.Fprintf(out, "  %sConvergence:      %s%s\n", emoji("🎯"), paint(goodColor)(*conv), suffix)
}

// printRepoStatsTable renders the per-repo contribution rollup. Only the
// top repos by capability are shown; the report JSON keeps the full list.
func printRepoStatsTable(w io.Writer, stats []schema.ReportRepoStat, cfg *contract.Config) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repo", "Commits", "Capability", "Share", "Top Categories"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	limit := min(len(stats), topReposInTable)
	var data [][]string
	for _, s := range stats[:limit] {
		data = append(data, []string{
			truncateName(s.Name, maxRepoNameWidth(cfg)),
			strconv.Itoa(s.Commits),
			humanInt(s.Capability),
			fmt.Sprintf("%.1f%%", s.PctContribution),
			strings.Join(s.TopCategories, ", "),
		})
	}
	if err := table.Bulk(data); err != nil {
		contract.LogWarn("failed to build repo table", err)
		return
	}
	if err := table.Render(); err != nil {
		contract.LogWarn("failed to render repo table", err)
	}
}

// maxRepoNameWidth budgets roughly a third of the terminal for the repo
// column so the category column keeps room to breathe.
func maxRepoNameWidth(cfg *contract.Config) int {
	width := terminalWidth(cfg) / 3
	if width < 16 {
		return 16
	}
	return width
}

// truncateName shortens a repo name to maxWidth with an ellipsis prefix.
func truncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return name
}

// humanInt formats an integer with thousands separators.
func humanInt(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
