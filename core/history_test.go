package core

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capcurve/capcurve/schema"
)

func historyModels(conv string) schema.Models {
	zero := "2027-06-01"
	return schema.Models{
		CommitRate: &schema.CommitRateModel{L: 4000, RSquared: 0.95, ZeroDate: &zero},
		Capability: &schema.CapabilityModel{
			L: 5000, RSquared: 0.98,
			Pct95Date: "2027-02-01", Pct99Date: "2027-08-01", PctNow: 60.0,
		},
		Sophistication:  &schema.SophisticationModel{Slope: 0.01, Pct100Date: "2028-01-01"},
		ConvergenceDate: &conv,
	}
}

func TestLoadHistoryMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), schema.HistoryFileName)
	assert.Nil(t, LoadHistory(path))
}

func TestLoadHistoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), schema.HistoryFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Nil(t, LoadHistory(path))
}

func TestBuildHistoryEntry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	current := schema.CurrentState{TotalCommits: 1234, TotalCapability: 3000, PctOfAsymptote: 60.0}

	entry := buildHistoryEntry(historyModels("2026-01-31"), current, schema.RegexMethod, now)

	assert.Equal(t, "2026-01-01T12:00:00", entry.ScanTime)
	assert.Equal(t, schema.RegexMethod, entry.ScoringMethod)
	assert.Equal(t, 1234, entry.TotalCommits)
	assert.Equal(t, 5000, entry.CapabilityL)
	assert.InDelta(t, 0.98, entry.CapabilityR2, 1e-9)
	assert.InDelta(t, 0.95, entry.CommitRateR2, 1e-9)

	require.NotNil(t, entry.ComponentDates.CommitZero)
	assert.Equal(t, "2027-06-01", *entry.ComponentDates.CommitZero)
	require.NotNil(t, entry.ComponentDates.Capability95)
	assert.Equal(t, "2027-02-01", *entry.ComponentDates.Capability95)
	require.NotNil(t, entry.ComponentDates.Sophistication100)
	assert.Equal(t, "2028-01-01", *entry.ComponentDates.Sophistication100)

	require.NotNil(t, entry.DaysUntilConvergence)
	assert.Equal(t, 30, *entry.DaysUntilConvergence)
}

func TestBuildHistoryEntryNoModels(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := buildHistoryEntry(schema.Models{}, schema.CurrentState{}, schema.RegexMethod, now)

	assert.Nil(t, entry.ConvergenceDate)
	assert.Nil(t, entry.DaysUntilConvergence)
	assert.Nil(t, entry.ComponentDates.CommitZero)
	assert.Zero(t, entry.CapabilityL)
}

func TestSameOutcome(t *testing.T) {
	conv1 := "2027-03-15"
	conv2 := "2027-04-01"
	cases := []struct {
		name string
		a, b schema.HistoryEntry
		want bool
	}{
		{"both nil dates, same commits", schema.HistoryEntry{TotalCommits: 5}, schema.HistoryEntry{TotalCommits: 5}, true},
		{"different commits", schema.HistoryEntry{TotalCommits: 5}, schema.HistoryEntry{TotalCommits: 6}, false},
		{"same date", schema.HistoryEntry{TotalCommits: 5, ConvergenceDate: &conv1}, schema.HistoryEntry{TotalCommits: 5, ConvergenceDate: &conv1}, true},
		{"different date", schema.HistoryEntry{TotalCommits: 5, ConvergenceDate: &conv1}, schema.HistoryEntry{TotalCommits: 5, ConvergenceDate: &conv2}, false},
		{"nil vs set", schema.HistoryEntry{TotalCommits: 5}, schema.HistoryEntry{TotalCommits: 5, ConvergenceDate: &conv1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, sameOutcome(c.a, c.b))
		})
	}
}

func TestRecordHistoryAppendsAndDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), schema.HistoryFileName)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	current := schema.CurrentState{TotalCommits: 100, TotalCapability: 500}

	history := RecordHistory(io.Discard, path, historyModels("2026-06-01"), current, schema.RegexMethod, now)
	require.Len(t, history, 1)

	// Same outcome re-runs do not append
	history = RecordHistory(io.Discard, path, historyModels("2026-06-01"), current, schema.RegexMethod, now.Add(time.Hour))
	require.Len(t, history, 1)

	// New commit count does
	current.TotalCommits = 120
	history = RecordHistory(io.Discard, path, historyModels("2026-06-01"), current, schema.RegexMethod, now.Add(2*time.Hour))
	require.Len(t, history, 2)

	// Convergence shift does too
	history = RecordHistory(io.Discard, path, historyModels("2026-07-01"), current, schema.RegexMethod, now.Add(3*time.Hour))
	require.Len(t, history, 3)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []schema.HistoryEntry
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, history, onDisk)
	assert.Equal(t, 100, onDisk[0].TotalCommits)
	assert.Equal(t, 120, onDisk[2].TotalCommits)
}
