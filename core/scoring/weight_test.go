package scoring

import (
	"io"
	"os"
	"testing"

	"github.com/capcurve/capcurve/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDiffstatWeight(t *testing.T) {
	th := schema.DefaultThresholds()

	tests := []struct {
		name      string
		score     schema.ScoredCommit
		diffstat  *schema.DiffStat
		wantTotal float64
	}{
		{
			name:      "nil diffstat leaves score alone",
			score:     schema.ScoredCommit{Total: 3, Categories: map[string]float64{"agents": 3}},
			diffstat:  nil,
			wantTotal: 3,
		},
		{
			name:      "large source change boosts",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}},
			diffstat:  &schema.DiffStat{Added: 150, Source: 150},
			wantTotal: 13, // 10 * 1.3
		},
		{
			name:      "medium source change boosts less",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}},
			diffstat:  &schema.DiffStat{Added: 50, Source: 50},
			wantTotal: 11.5, // 10 * 1.15
		},
		{
			name:      "boundary counts as large",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}},
			diffstat:  &schema.DiffStat{Added: 100, Source: 100},
			wantTotal: 13,
		},
		{
			name:      "config only commit dampens",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"foundation": 10}},
			diffstat:  &schema.DiffStat{Added: 5, Config: 5, Files: 1},
			wantTotal: 8, // 10 * 0.8
		},
		{
			name:      "major new files boost",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"elements": 10}},
			diffstat:  &schema.DiffStat{Added: 20, Source: 20, NewFiles: 3},
			wantTotal: 12, // 10 * 1.2
		},
		{
			name:      "minor new files boost",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"elements": 10}},
			diffstat:  &schema.DiffStat{Added: 20, Source: 20, NewFiles: 1},
			wantTotal: 11, // 10 * 1.1
		},
		{
			name:      "deletion heavy commit dampens",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"meta": 10}},
			diffstat:  &schema.DiffStat{Added: 10, Deleted: 100},
			wantTotal: 8.5, // 10 * 0.85
		},
		{
			name:      "deletion at threshold does not dampen",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"meta": 10}},
			diffstat:  &schema.DiffStat{Added: 10, Deleted: 50},
			wantTotal: 10,
		},
		{
			name:      "floor holds after dampening",
			score:     schema.ScoredCommit{Total: 0.5, Categories: map[string]float64{}},
			diffstat:  &schema.DiffStat{Added: 4, Config: 4},
			wantTotal: 0.5, // 0.5*0.8 = 0.4 floors back up
		},
		{
			name:      "bonuses stack additively before dampening",
			score:     schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}},
			diffstat:  &schema.DiffStat{Added: 200, Source: 200, NewFiles: 5},
			wantTotal: 15, // 10 * (1 + 0.3 + 0.2)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDiffstatWeight(tt.score, tt.diffstat, th)
			assert.InDelta(t, tt.wantTotal, got.Total, 1e-9)
		})
	}
}

func TestApplyDiffstatWeightConfigOnly(t *testing.T) {
	// Config-only detection requires zero source and test lines.
	th := schema.DefaultThresholds()
	score := schema.ScoredCommit{Total: 10, Categories: map[string]float64{"foundation": 10}}

	mixed := ApplyDiffstatWeight(score, &schema.DiffStat{Added: 10, Source: 5, Config: 5}, th)
	assert.InDelta(t, 10.0, mixed.Total, 1e-9, "config plus source should not dampen")

	configOnly := ApplyDiffstatWeight(score, &schema.DiffStat{Added: 5, Config: 5}, th)
	assert.InDelta(t, 8.0, configOnly.Total, 1e-9)
}

func TestApplyDiffstatWeightTestBonus(t *testing.T) {
	th := schema.DefaultThresholds()

	t.Run("bonus lands in safety", func(t *testing.T) {
		score := schema.ScoredCommit{Total: 3, Categories: map[string]float64{"agents": 3}}
		got := ApplyDiffstatWeight(score, &schema.DiffStat{Added: 12, Test: 12}, th)
		assert.Equal(t, 2.0, got.Categories["safety"], "safety points should appear even when absent before")
	})

	t.Run("bonus adds to existing safety", func(t *testing.T) {
		score := schema.ScoredCommit{Total: 4, Categories: map[string]float64{"safety": 4}}
		got := ApplyDiffstatWeight(score, &schema.DiffStat{Added: 20, Test: 20}, th)
		assert.Equal(t, 6.0, got.Categories["safety"])
	})

	t.Run("below threshold no bonus", func(t *testing.T) {
		score := schema.ScoredCommit{Total: 3, Categories: map[string]float64{"agents": 3}}
		got := ApplyDiffstatWeight(score, &schema.DiffStat{Added: 9, Test: 9}, th)
		_, ok := got.Categories["safety"]
		assert.False(t, ok)
	})
}

func TestApplyDiffstatWeightNoMutation(t *testing.T) {
	th := schema.DefaultThresholds()
	original := schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}}

	got := ApplyDiffstatWeight(original, &schema.DiffStat{Added: 200, Source: 200, Test: 50}, th)

	assert.Equal(t, 10.0, original.Total, "input total should survive weighting")
	assert.Equal(t, map[string]float64{"agents": 10}, original.Categories, "input categories should survive weighting")
	assert.NotEqual(t, original.Total, got.Total)
}

func TestApplyDiffstatWeightClamps(t *testing.T) {
	// Override thresholds so the bonuses stack past the ceiling.
	th := schema.DefaultThresholds()
	th.LargeSourceBonus = 2.0
	th.MajorNewFilesBonus = 1.5

	score := schema.ScoredCommit{Total: 10, Categories: map[string]float64{"agents": 10}}

	var got schema.ScoredCommit
	warned := captureStderr(t, func() {
		got = ApplyDiffstatWeight(score, &schema.DiffStat{Added: 500, Source: 500, NewFiles: 10}, th)
	})
	assert.InDelta(t, 20.0, got.Total, 1e-9, "multiplier should clamp to the ceiling")
	assert.Contains(t, warned, "clamped", "a clamp should be surfaced as a warning")

	th = schema.DefaultThresholds()
	th.ConfigOnlyMultiplier = 0.1
	warned = captureStderr(t, func() {
		got = ApplyDiffstatWeight(score, &schema.DiffStat{Added: 5, Config: 5}, th)
	})
	assert.InDelta(t, 4.0, got.Total, 1e-9, "multiplier should clamp to the floor")
	assert.Contains(t, warned, "clamped")

	warned = captureStderr(t, func() {
		got = ApplyDiffstatWeight(score, &schema.DiffStat{Added: 150, Source: 150}, schema.DefaultThresholds())
	})
	assert.InDelta(t, 13.0, got.Total, 1e-9)
	assert.Empty(t, warned, "in-bounds multipliers should stay silent")
}

// captureStderr runs fn with os.Stderr redirected into a pipe and
// returns what was written.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = old }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(data)
}
