package curvefit

import (
	"math"
	"time"

	"github.com/capcurve/capcurve/schema"
)

const (
	// daysPerMonth converts fractional month indexes to calendar days.
	daysPerMonth = 30.44

	// rateFloor is the commits-per-month rate below which the commit
	// curve is considered dead.
	rateFloor = 10

	// projectionMonths is how far each model forecasts beyond the
	// observed series.
	projectionMonths = 12

	// farFuture stands in for a milestone that a degenerate fit never
	// reaches.
	farFuture = 99
)

// monthsToDate converts a fractional month index into a calendar date,
// dropping the sub-day remainder.
func monthsToDate(epoch time.Time, t float64) time.Time {
	return epoch.AddDate(0, 0, int(t*daysPerMonth))
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// FitModels derives the commit-rate, capability and sophistication
// models from a monthly series, then blends their milestone dates into
// a single convergence estimate. Series too short or too flat to fit
// simply omit their model.
func FitModels(monthly []schema.MonthlyBucket, epoch time.Time) schema.Models {
	t := make([]float64, len(monthly))
	cumCommits := make([]float64, len(monthly))
	cumCapability := make([]float64, len(monthly))
	sophistication := make([]float64, len(monthly))
	for i, m := range monthly {
		t[i] = float64(i)
		cumCommits[i] = float64(m.CumulativeCommits)
		cumCapability[i] = float64(m.CumulativeCapability)
		sophistication[i] = m.Sophistication
	}

	var totalCommits, totalCapability int
	if len(monthly) > 0 {
		totalCommits = monthly[len(monthly)-1].CumulativeCommits
		totalCapability = monthly[len(monthly)-1].CumulativeCapability
	}

	var models schema.Models
	models.CommitRate = fitCommitRate(t, cumCommits, totalCommits, len(monthly), epoch)
	models.Capability = fitCapability(t, cumCapability, totalCapability, len(monthly), epoch)
	models.Sophistication = fitSophistication(t, sophistication, epoch)
	models.ConvergenceDate = blendConvergenceDate(models)
	return models
}

// fitCommitRate fits the logistic over cumulative commits and locates
// where its derivative falls below the rate floor.
func fitCommitRate(t, cum []float64, total, observed int, epoch time.Time) *schema.CommitRateModel {
	lSpan := Span{Start: int(float64(total) * 1.01), Stop: int(float64(total) * 1.5), Step: max(1, int(float64(total)*0.02))}
	best := FitLogistic(t, cum, lSpan, Span{Start: 3, Stop: 30}, Span{Start: 5, Stop: 50})
	if best == nil {
		return nil
	}

	// Scan forward from the inflection for the month the rate dies.
	var zeroDate *string
	for check := int(best.TMid * 10); check < 360; check++ {
		ct := float64(check) / 10.0
		if LogisticDeriv(ct, best.L, best.R, best.TMid) < rateFloor {
			d := schema.ISODate(monthsToDate(epoch, ct))
			zeroDate = &d
			break
		}
	}

	projection := make([]schema.RateProjection, 0, projectionMonths)
	for futureT := observed; futureT < observed+projectionMonths; futureT++ {
		rate := LogisticDeriv(float64(futureT), best.L, best.R, best.TMid)
		projection = append(projection, schema.RateProjection{
			Month:            monthsToDate(epoch, float64(futureT)).Format(schema.MonthFormat),
			PredictedCommits: int(math.Round(rate)),
		})
	}

	return &schema.CommitRateModel{
		L:          int(best.L),
		R:          roundTo(best.R, 2),
		TMid:       roundTo(best.TMid, 2),
		RSquared:   roundTo(best.RSquared, 4),
		ZeroDate:   zeroDate,
		Projection: projection,
	}
}

// fitCapability fits the logistic over cumulative capability and solves
// the 95% and 99% milestones in closed form.
func fitCapability(t, cum []float64, total, observed int, epoch time.Time) *schema.CapabilityModel {
	lSpan := Span{Start: int(float64(total) * 1.01), Stop: int(float64(total) * 2.0), Step: max(1, int(float64(total)*0.02))}
	best := FitLogistic(t, cum, lSpan, Span{Start: 3, Stop: 50}, Span{Start: 5, Stop: 50})
	if best == nil {
		return nil
	}

	t95, t99 := float64(farFuture), float64(farFuture)
	if best.R > 0 {
		t95 = best.TMid + math.Log(19)/best.R
		t99 = best.TMid + math.Log(99)/best.R
	}
	var pctNow float64
	if best.L > 0 {
		pctNow = float64(total) / best.L * 100
	}

	projection := make([]schema.CapabilityProjection, 0, projectionMonths)
	for futureT := observed; futureT < observed+projectionMonths; futureT++ {
		predicted := Logistic(float64(futureT), best.L, best.R, best.TMid)
		projection = append(projection, schema.CapabilityProjection{
			Month:               monthsToDate(epoch, float64(futureT)).Format(schema.MonthFormat),
			PredictedCapability: int(math.Round(predicted)),
			PctOfL:              roundTo(predicted/best.L*100, 1),
		})
	}

	return &schema.CapabilityModel{
		L:          int(math.Round(best.L)),
		R:          roundTo(best.R, 2),
		TMid:       roundTo(best.TMid, 2),
		RSquared:   roundTo(best.RSquared, 4),
		Pct95Date:  schema.ISODate(monthsToDate(epoch, t95)),
		Pct99Date:  schema.ISODate(monthsToDate(epoch, t99)),
		PctNow:     roundTo(pctNow, 1),
		Projection: projection,
	}
}

// fitSophistication fits a linear trend through the non-zero
// sophistication points and extrapolates to 1.0.
func fitSophistication(t, soph []float64, epoch time.Time) *schema.SophisticationModel {
	var nx, ny []float64
	for i := range soph {
		if soph[i] > 0 {
			nx = append(nx, t[i])
			ny = append(ny, soph[i])
		}
	}
	if len(nx) < 2 {
		return nil
	}
	intercept, slope := Linreg(nx, ny)
	pct100T := float64(farFuture)
	if slope > 0 {
		pct100T = (1.0 - intercept) / slope
	}
	return &schema.SophisticationModel{
		Slope:      roundTo(slope, 4),
		Intercept:  roundTo(intercept, 4),
		Pct100Date: schema.ISODate(monthsToDate(epoch, pct100T)),
	}
}

// blendConvergenceDate averages whatever milestone dates the fitted
// models produced. Nil when nothing converged.
func blendConvergenceDate(models schema.Models) *string {
	var dates []time.Time
	appendDate := func(iso string) {
		if d, err := schema.ParseISODate(iso); err == nil {
			dates = append(dates, d)
		}
	}
	if models.CommitRate != nil && models.CommitRate.ZeroDate != nil {
		appendDate(*models.CommitRate.ZeroDate)
	}
	if models.Capability != nil {
		appendDate(models.Capability.Pct95Date)
		appendDate(models.Capability.Pct99Date)
	}
	if models.Sophistication != nil {
		appendDate(models.Sophistication.Pct100Date)
	}
	if len(dates) == 0 {
		return nil
	}
	iso := schema.ISODate(schema.MeanDate(dates))
	return &iso
}
