// Package aggregate rolls scored commits into monthly and weekly series.
package aggregate

import (
	"math"
	"time"

	"github.com/capcurve/capcurve/schema"
)

// Entry is one scored commit ready for aggregation.
type Entry struct {
	Commit schema.Commit
	Score  schema.ScoredCommit
}

// Classifier is the rubric view the aggregation layer needs.
type Classifier interface {
	// Categories returns every category name in deterministic order.
	Categories() []string
	// Has reports whether a category name belongs to the rubric.
	Has(name string) bool
	// IsHighLevel reports whether a category counts toward sophistication.
	IsHighLevel(name string) bool
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Monthly buckets both scored sets onto the month grid from epoch
// through end. The regex set is the pattern-only shadow under
// enrichment; pass nil to skip it. Its buckets share commit counts
// with the primary set since both describe the same commits. The
// category breakdown is keyed by month and zero-filled across every
// rubric category.
func Monthly(scored, scoredRegex []Entry, epoch, end time.Time, rubric Classifier, alpha float64) (monthly, monthlyRegex []schema.MonthlyBucket, catMonthly map[string]map[string]int) {
	grid := schema.MonthGrid(epoch, end)

	commits := make(map[string]int)
	capability := make(map[string]float64)
	catScores := make(map[string]map[string]float64)
	for _, e := range scored {
		key := schema.MonthKey(e.Commit.Date)
		commits[key]++
		capability[key] += e.Score.Total
		if catScores[key] == nil {
			catScores[key] = make(map[string]float64)
		}
		for cat, score := range e.Score.Categories {
			catScores[key][cat] += score
		}
	}

	regexCapability := make(map[string]float64)
	regexCatScores := make(map[string]map[string]float64)
	for _, e := range scoredRegex {
		key := schema.MonthKey(e.Commit.Date)
		regexCapability[key] += e.Score.Total
		if regexCatScores[key] == nil {
			regexCatScores[key] = make(map[string]float64)
		}
		for cat, score := range e.Score.Categories {
			regexCatScores[key][cat] += score
		}
	}

	rawSoph := make([]float64, len(grid))
	rawRegexSoph := make([]float64, len(grid))
	for i, m := range grid {
		key := schema.MonthKey(m)
		rawSoph[i] = Sophistication(catScores[key], rubric)
		rawRegexSoph[i] = Sophistication(regexCatScores[key], rubric)
	}
	soph := SmoothSophistication(rawSoph, alpha)
	regexSoph := SmoothSophistication(rawRegexSoph, alpha)

	var cumCommits int
	var cumCap, cumRegexCap float64
	catMonthly = make(map[string]map[string]int, len(grid))
	for i, m := range grid {
		key := schema.MonthKey(m)
		c := commits[key]
		cumCommits += c
		cumCap += capability[key]

		monthly = append(monthly, schema.MonthlyBucket{
			Month:                key,
			Commits:              c,
			Capability:           int(math.Round(capability[key])),
			Sophistication:       roundTo(soph[i], 3),
			CumulativeCommits:    cumCommits,
			CumulativeCapability: int(math.Round(cumCap)),
		})

		if scoredRegex != nil {
			cumRegexCap += regexCapability[key]
			monthlyRegex = append(monthlyRegex, schema.MonthlyBucket{
				Month:                key,
				Commits:              c,
				Capability:           int(math.Round(regexCapability[key])),
				Sophistication:       roundTo(regexSoph[i], 3),
				CumulativeCommits:    cumCommits,
				CumulativeCapability: int(math.Round(cumRegexCap)),
			})
		}

		rounded := make(map[string]int, len(rubric.Categories()))
		for _, cat := range rubric.Categories() {
			rounded[cat] = int(math.Round(catScores[key][cat]))
		}
		catMonthly[key] = rounded
	}

	return monthly, monthlyRegex, catMonthly
}

// Weekly buckets the scored set by whole weeks from epoch through end.
// Commits dated before epoch fall outside the grid and are dropped.
func Weekly(scored []Entry, epoch, end time.Time) []schema.WeeklyBucket {
	totalWeeks := schema.WeekIndex(epoch, end) + 1
	if totalWeeks < 1 {
		return nil
	}

	commits := make(map[int]int)
	capability := make(map[int]float64)
	for _, e := range scored {
		w := schema.WeekIndex(epoch, e.Commit.Date)
		commits[w]++
		capability[w] += e.Score.Total
	}

	weekly := make([]schema.WeeklyBucket, 0, totalWeeks)
	for w := range totalWeeks {
		weekly = append(weekly, schema.WeeklyBucket{
			Week:       w,
			Start:      schema.ISODate(schema.WeekStart(epoch, w)),
			Commits:    commits[w],
			Capability: int(math.Round(capability[w])),
		})
	}
	return weekly
}
