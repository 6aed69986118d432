package curvefit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capcurve/capcurve/schema"
)

func TestEstimateConvergenceImpact(t *testing.T) {
	models := schema.Models{
		Capability: &schema.CapabilityModel{L: 5000, R: 0.4, PctNow: 60.0},
	}

	// sigma = 0.6, derivative = 5000 * 0.4 * 0.6 * 0.4 = 480 points/month
	got := EstimateConvergenceImpact(48, models)
	assert.InDelta(t, -(48.0/480.0)*daysPerMonth, got, 1e-9)
	assert.Negative(t, got)
}

func TestEstimateConvergenceImpactLargerScoreMovesMore(t *testing.T) {
	models := schema.Models{
		Capability: &schema.CapabilityModel{L: 5000, R: 0.4, PctNow: 60.0},
	}
	small := EstimateConvergenceImpact(10, models)
	large := EstimateConvergenceImpact(100, models)
	assert.Less(t, large, small)
}

func TestEstimateConvergenceImpactZeroCases(t *testing.T) {
	withModel := schema.Models{
		Capability: &schema.CapabilityModel{L: 5000, R: 0.4, PctNow: 60.0},
	}
	cases := []struct {
		name   string
		score  float64
		models schema.Models
	}{
		{"no capability model", 48, schema.Models{}},
		{"zero asymptote", 48, schema.Models{Capability: &schema.CapabilityModel{R: 0.4, PctNow: 60.0}}},
		{"zero score", 0, withModel},
		{"negative score", -5, withModel},
		{"saturated curve", 48, schema.Models{Capability: &schema.CapabilityModel{L: 5000, R: 0.4, PctNow: 100.0}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Zero(t, EstimateConvergenceImpact(c.score, c.models))
		})
	}
}
