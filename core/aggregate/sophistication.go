package aggregate

// Sophistication blends two signals from one month of category scores:
// the share of scoring weight landing in high-level categories, and how
// many distinct categories fired at all.
const (
	ratioShare        = 0.7 // weight of the high-level score ratio
	breadthShare      = 0.3 // weight of the category breadth term
	breadthSaturation = 6   // distinct categories at which breadth maxes out
)

// DefaultSmoothingAlpha is the exponential smoothing factor applied to
// the monthly sophistication series unless configured otherwise.
const DefaultSmoothingAlpha = 0.5

// Sophistication scores one month of category totals on a 0..1 scale.
// Categories the rubric does not know are ignored. A month with no
// known scoring activity rates zero.
func Sophistication(cats map[string]float64, rubric Classifier) float64 {
	var high, total float64
	distinct := 0
	for name, score := range cats {
		if !rubric.Has(name) {
			continue
		}
		total += score
		if score > 0 {
			distinct++
		}
		if rubric.IsHighLevel(name) {
			high += score
		}
	}
	if total <= 0 {
		return 0
	}
	breadth := min(1.0, float64(distinct)/breadthSaturation)
	return ratioShare*(high/total) + breadthShare*breadth
}

// SmoothSophistication applies exponential smoothing to a raw monthly
// series. The first value passes through unchanged; each later value
// blends alpha of the raw point with the running smoothed value.
func SmoothSophistication(raw []float64, alpha float64) []float64 {
	if len(raw) == 0 {
		return nil
	}
	smoothed := make([]float64, len(raw))
	smoothed[0] = raw[0]
	for i := 1; i < len(raw); i++ {
		smoothed[i] = alpha*raw[i] + (1-alpha)*smoothed[i-1]
	}
	return smoothed
}
