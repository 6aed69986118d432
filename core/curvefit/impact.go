package curvefit

import "github.com/capcurve/capcurve/schema"

// EstimateConvergenceImpact estimates, in days, how much landing work
// worth score would move the projected convergence date. The estimate
// divides the score by the current slope of the fitted capability
// curve, so the same work counts for more as the curve flattens.
// Returns 0 without a capability model, a positive asymptote or a
// positive score; otherwise negative (convergence pulled closer).
func EstimateConvergenceImpact(score float64, models schema.Models) float64 {
	if models.Capability == nil || models.Capability.L <= 0 || score <= 0 {
		return 0
	}
	sigma := models.Capability.PctNow / 100
	deriv := float64(models.Capability.L) * models.Capability.R * sigma * (1 - sigma)
	if deriv <= 0 {
		return 0
	}
	return -(score / deriv) * daysPerMonth
}
