package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// LoadHistory reads the convergence history file. Missing or corrupt
// files read as an empty history with a warning for corruption.
func LoadHistory(path string) []schema.HistoryEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var history []schema.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		contract.LogWarn(fmt.Sprintf("%s corrupted, starting fresh", schema.HistoryFileName), err)
		return nil
	}
	return history
}

// buildHistoryEntry assembles one convergence snapshot.
func buildHistoryEntry(models schema.Models, current schema.CurrentState, method schema.ScoringMethod, now time.Time) schema.HistoryEntry {
	entry := schema.HistoryEntry{
		ScanTime:        now.Format(schema.TimestampFormat),
		ScoringMethod:   method,
		ConvergenceDate: models.ConvergenceDate,
		TotalCommits:    current.TotalCommits,
		TotalCapability: current.TotalCapability,
		PctOfAsymptote:  current.PctOfAsymptote,
	}
	if models.CommitRate != nil {
		entry.ComponentDates.CommitZero = models.CommitRate.ZeroDate
		entry.CommitRateR2 = models.CommitRate.RSquared
	}
	if models.Capability != nil {
		entry.ComponentDates.Capability95 = &models.Capability.Pct95Date
		entry.ComponentDates.Capability99 = &models.Capability.Pct99Date
		entry.CapabilityL = models.Capability.L
		entry.CapabilityR2 = models.Capability.RSquared
	}
	if models.Sophistication != nil {
		entry.ComponentDates.Sophistication100 = &models.Sophistication.Pct100Date
	}
	if models.ConvergenceDate != nil {
		if conv, err := schema.ParseISODate(*models.ConvergenceDate); err == nil {
			days := schema.DaysBetween(now, conv)
			entry.DaysUntilConvergence = &days
		}
	}
	return entry
}

// sameOutcome reports whether two snapshots agree on the figures that
// matter for trend plots.
func sameOutcome(a, b schema.HistoryEntry) bool {
	if a.TotalCommits != b.TotalCommits {
		return false
	}
	if (a.ConvergenceDate == nil) != (b.ConvergenceDate == nil) {
		return false
	}
	return a.ConvergenceDate == nil || *a.ConvergenceDate == *b.ConvergenceDate
}

// RecordHistory appends a snapshot to the history file, prints the
// outcome to out and returns the full history. A snapshot that repeats
// the previous convergence date and commit count is not appended, so
// re-runs on unchanged data stay idempotent. Write failures warn
// rather than abort the scan.
func RecordHistory(out io.Writer, path string, models schema.Models, current schema.CurrentState, method schema.ScoringMethod, now time.Time) []schema.HistoryEntry {
	history := LoadHistory(path)
	entry := buildHistoryEntry(models, current, method, now)

	if n := len(history); n > 0 && sameOutcome(history[n-1], entry) {
		fmt.Fprintf(out, "  History unchanged (%d entries)\n", n)
		return history
	}
	history = append(history, entry)

	data, err := json.MarshalIndent(history, "", "  ")
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		contract.LogWarn(fmt.Sprintf("could not write %s", schema.HistoryFileName), err)
	} else {
		fmt.Fprintf(out, "  History recorded (%d entries)\n", len(history))
	}
	return history
}
