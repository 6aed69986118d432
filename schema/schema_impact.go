package schema

// IssueImpact is one open issue scored against the rubric, with its
// estimated effect on the convergence date in days. Negative days pull
// the date earlier.
type IssueImpact struct {
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	ImpactDays float64 `json:"impact_days"`
}
