package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capcurve/capcurve/core/scoring"
)

func TestSophistication(t *testing.T) {
	rubric := scoring.DefaultRubric()

	testCases := []struct {
		name string
		cats map[string]float64
		want float64
	}{
		{
			// No activity rates zero.
			name: "empty month",
			cats: map[string]float64{},
			want: 0,
		},
		{
			// Nil behaves like empty.
			name: "nil month",
			cats: nil,
			want: 0,
		},
		{
			// Categories outside the rubric carry no signal.
			name: "unknown categories only",
			cats: map[string]float64{"bogus": 5, "mystery": 2},
			want: 0,
		},
		{
			// Zero-score entries do not count as activity.
			name: "known but zero score",
			cats: map[string]float64{"foundation": 0},
			want: 0,
		},
		{
			// Pure low-level work: no ratio term, one category of breadth.
			name: "low level only",
			cats: map[string]float64{"foundation": 10},
			want: 0.3 * (1.0 / 6),
		},
		{
			// Pure high-level work maxes the ratio term.
			name: "high level only",
			cats: map[string]float64{"agents": 10},
			want: 0.7 + 0.3*(1.0/6),
		},
		{
			// Even split between high and low level.
			name: "even mix",
			cats: map[string]float64{"agents": 5, "foundation": 5},
			want: 0.7*0.5 + 0.3*(2.0/6),
		},
		{
			// Six distinct categories saturate the breadth term.
			name: "breadth saturates at six",
			cats: map[string]float64{
				"foundation": 1, "elements": 1, "integration": 1,
				"agents": 1, "meta": 1, "aql": 1,
			},
			want: 0.7*(3.0/6) + 0.3,
		},
		{
			// Breadth cannot exceed its saturated share.
			name: "breadth capped past six",
			cats: map[string]float64{
				"foundation": 1, "elements": 1, "integration": 1,
				"safety": 1, "ecosystem": 1, "agents": 1, "meta": 1,
			},
			want: 0.7*(2.0/7) + 0.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sophistication(tc.cats, rubric)
			assert.InDelta(t, tc.want, got, 1e-9, "sophistication for %s", tc.name)
			assert.GreaterOrEqual(t, got, 0.0, "sophistication is never negative")
			assert.LessOrEqual(t, got, 1.0, "sophistication never exceeds one")
		})
	}
}

func TestSmoothSophistication(t *testing.T) {
	testCases := []struct {
		name  string
		raw   []float64
		alpha float64
		want  []float64
	}{
		{
			// Empty in, empty out.
			name:  "empty series",
			raw:   nil,
			alpha: 0.5,
			want:  nil,
		},
		{
			// A single point passes through.
			name:  "single point",
			raw:   []float64{0.4},
			alpha: 0.5,
			want:  []float64{0.4},
		},
		{
			// A spike decays by halves.
			name:  "spike decays",
			raw:   []float64{1, 0, 0},
			alpha: 0.5,
			want:  []float64{1, 0.5, 0.25},
		},
		{
			// A step is only half absorbed at first.
			name:  "step dampened",
			raw:   []float64{0, 1},
			alpha: 0.5,
			want:  []float64{0, 0.5},
		},
		{
			// A constant series is a fixed point.
			name:  "constant unchanged",
			raw:   []float64{0.3, 0.3, 0.3},
			alpha: 0.5,
			want:  []float64{0.3, 0.3, 0.3},
		},
		{
			// Alpha one disables smoothing entirely.
			name:  "alpha one copies raw",
			raw:   []float64{0.1, 0.9, 0.2},
			alpha: 1,
			want:  []float64{0.1, 0.9, 0.2},
		},
		{
			// A small alpha stays sticky to history.
			name:  "small alpha",
			raw:   []float64{0, 1, 1},
			alpha: 0.2,
			want:  []float64{0, 0.2, 0.36},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SmoothSophistication(tc.raw, tc.alpha)
			assert.Len(t, got, len(tc.want), "smoothed length matches input")
			for i := range tc.want {
				assert.InDelta(t, tc.want[i], got[i], 1e-9, "smoothed value at index %d", i)
			}
		})
	}
}
