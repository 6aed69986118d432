package schema

// ComponentDates holds the per-model convergence estimates that feed
// the blended convergence date. Nil means the model never crossed its
// threshold.
type ComponentDates struct {
	CommitZero        *string `json:"commit_zero"`        // Date the commit rate effectively stops
	Capability95      *string `json:"capability_95"`      // Date capability reaches 95% of its asymptote
	Capability99      *string `json:"capability_99"`      // Date capability reaches 99% of its asymptote
	Sophistication100 *string `json:"sophistication_100"` // Date the sophistication trend reaches 1.0
}

// HistoryEntry is one convergence snapshot appended after a scan.
// Consecutive entries that agree on ConvergenceDate and TotalCommits
// are recorded once.
type HistoryEntry struct {
	ScanTime             string         `json:"scan_time"` // Local timestamp, second precision
	ScoringMethod        ScoringMethod  `json:"scoring_method"`
	ConvergenceDate      *string        `json:"convergence_date"`
	ComponentDates       ComponentDates `json:"component_dates"`
	DaysUntilConvergence *int           `json:"days_until_convergence"`
	TotalCommits         int            `json:"total_commits"`
	TotalCapability      int            `json:"total_capability"`
	PctOfAsymptote       float64        `json:"pct_of_asymptote"`
	CapabilityL          int            `json:"capability_L"`
	CapabilityR2         float64        `json:"capability_r2"`
	CommitRateR2         float64        `json:"commit_rate_r2"`
}
