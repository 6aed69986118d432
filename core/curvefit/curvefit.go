// Package curvefit fits growth models to activity series by grid search.
package curvefit

import "math"

// satExponent is where the logistic exponent saturates. Beyond it the
// curve is flat to double precision, so the value is pinned instead of
// risking overflow in Exp.
const satExponent = 50

// degenerateEps guards divisions in the regression helpers.
const degenerateEps = 1e-12

// Linreg fits y = intercept + slope*x by least squares. Fewer than two
// points or a degenerate x spread yields (0, 0).
func Linreg(x, y []float64) (intercept, slope float64) {
	n := float64(len(x))
	if len(x) < 2 {
		return 0, 0
	}
	var sx, sy, sxy, sx2 float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sx2 += x[i] * x[i]
	}
	denom := n*sx2 - sx*sx
	if math.Abs(denom) < degenerateEps {
		return 0, 0
	}
	slope = (n*sxy - sx*sy) / denom
	intercept = (sy - slope*sx) / n
	return intercept, slope
}

// RSquared is the coefficient of determination of predicted against
// actual. A flat actual series yields 0 rather than dividing by zero.
func RSquared(actual, predicted []float64) float64 {
	var meanY float64
	if len(actual) > 0 {
		var sum float64
		for _, y := range actual {
			sum += y
		}
		meanY = sum / float64(len(actual))
	}
	var ssTot, ssRes float64
	for i, y := range actual {
		ssTot += (y - meanY) * (y - meanY)
		ssRes += (y - predicted[i]) * (y - predicted[i])
	}
	if ssTot < degenerateEps {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Logistic evaluates L / (1 + e^(-r(t-tMid))) with saturation guards.
func Logistic(t, l, r, tMid float64) float64 {
	ex := r * (t - tMid)
	if ex > satExponent {
		return l
	}
	if ex < -satExponent {
		return 0
	}
	return l / (1.0 + math.Exp(-ex))
}

// LogisticDeriv evaluates the derivative of the logistic at t.
// Saturated arguments have a flat curve, so the derivative is zero.
func LogisticDeriv(t, l, r, tMid float64) float64 {
	ex := r * (t - tMid)
	if math.Abs(ex) > satExponent {
		return 0
	}
	sig := 1.0 / (1.0 + math.Exp(-ex))
	return l * r * sig * (1 - sig)
}

// Span is a half-open integer interval with a step, mirroring how the
// search grids are declared. A zero step iterates by one.
type Span struct {
	Start, Stop, Step int
}

func (s Span) step() int {
	if s.Step < 1 {
		return 1
	}
	return s.Step
}

// Fit is the winning grid point of a logistic search.
type Fit struct {
	RSquared float64
	L        float64
	R        float64
	TMid     float64
}

// FitLogistic exhaustively searches the (L, r, tMid) grid for the
// triple with the best R-squared against y. The r and tMid spans
// iterate in tenths. Ties keep the earlier grid point, which makes the
// search fully deterministic. Nil when any span is empty.
func FitLogistic(t, y []float64, lSpan, rSpan, tMidSpan Span) *Fit {
	var best *Fit
	pred := make([]float64, len(t))
	for l := lSpan.Start; l < lSpan.Stop; l += lSpan.step() {
		for r10 := rSpan.Start; r10 < rSpan.Stop; r10 += rSpan.step() {
			r := float64(r10) / 10.0
			for m10 := tMidSpan.Start; m10 < tMidSpan.Stop; m10 += tMidSpan.step() {
				tMid := float64(m10) / 10.0
				for i, ti := range t {
					pred[i] = Logistic(ti, float64(l), r, tMid)
				}
				r2 := RSquared(y, pred)
				if best == nil || r2 > best.RSquared {
					best = &Fit{RSquared: r2, L: float64(l), R: r, TMid: tMid}
				}
			}
		}
	}
	return best
}
