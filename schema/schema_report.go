package schema

// MonthlyBucket is one month of aggregated activity. Months run from
// the inception date through the current month with no gaps.
type MonthlyBucket struct {
	Month                string  `json:"month"`          // Calendar month formatted YYYY-MM
	Commits              int     `json:"commits"`        // Commits landed in the month
	Capability           int     `json:"capability"`     // Capability points earned, rounded
	Sophistication       float64 `json:"sophistication"` // Smoothed high-level ratio, 3 decimals
	CumulativeCommits    int     `json:"cumulative_commits"`
	CumulativeCapability int     `json:"cumulative_capability"`
}

// WeeklyBucket is one week of activity counted from the inception date.
type WeeklyBucket struct {
	Week       int    `json:"week"`       // Week index, zero based
	Start      string `json:"start"`      // ISO date of the week's first day
	Commits    int    `json:"commits"`    // Commits landed in the week
	Capability int    `json:"capability"` // Capability points earned, rounded
}

// RateProjection is one forecast month of predicted commit rate.
type RateProjection struct {
	Month            string `json:"month"`
	PredictedCommits int    `json:"predicted_commits"`
}

// CapabilityProjection is one forecast month of predicted capability.
type CapabilityProjection struct {
	Month               string  `json:"month"`
	PredictedCapability int     `json:"predicted_capability"`
	PctOfL              float64 `json:"pct_of_L"` // Share of the asymptote, 1 decimal
}

// CommitRateModel is the logistic fit over cumulative commit counts.
type CommitRateModel struct {
	L          int              `json:"L"`         // Fitted asymptote
	R          float64          `json:"r"`         // Growth rate, 2 decimals
	TMid       float64          `json:"t_mid"`     // Inflection month, 2 decimals
	RSquared   float64          `json:"r_squared"` // Fit quality, 4 decimals
	ZeroDate   *string          `json:"zero_date"` // ISO date the rate effectively dies, nil if it never does
	Projection []RateProjection `json:"projection"`
}

// CapabilityModel is the logistic fit over cumulative capability.
type CapabilityModel struct {
	L          int                    `json:"L"`
	R          float64                `json:"r"`
	TMid       float64                `json:"t_mid"`
	RSquared   float64                `json:"r_squared"`
	Pct95Date  string                 `json:"pct_95_date"`
	Pct99Date  string                 `json:"pct_99_date"`
	PctNow     float64                `json:"pct_now"` // Current share of the asymptote, 1 decimal
	Projection []CapabilityProjection `json:"projection"`
}

// SophisticationModel is the linear trend over monthly sophistication.
type SophisticationModel struct {
	Slope      float64 `json:"slope"`     // Monthly change, 4 decimals
	Intercept  float64 `json:"intercept"` // Trend value at month zero, 4 decimals
	Pct100Date string  `json:"pct_100_date"`
}

// Models bundles every fit produced by a scan. Pointer fields stay nil
// when the series was too short or too flat to fit.
type Models struct {
	CommitRate      *CommitRateModel     `json:"commit_rate,omitempty"`
	Capability      *CapabilityModel     `json:"capability,omitempty"`
	Sophistication  *SophisticationModel `json:"sophistication,omitempty"`
	ConvergenceDate *string              `json:"convergence_date,omitempty"` // Mean of the component dates, ISO
}

// CurrentState is the latest-known snapshot in the report.
type CurrentState struct {
	TotalCommits          int     `json:"total_commits"`
	TotalCapability       int     `json:"total_capability"`
	PctOfAsymptote        float64 `json:"pct_of_asymptote"`
	LatestCommitDate      string  `json:"latest_commit_date"`
	CurrentSophistication float64 `json:"current_sophistication"`
	DaysSinceInception    int     `json:"days_since_inception"`
}

// Report is the full data.json document written after a scan.
type Report struct {
	Generated          string                    `json:"generated"` // Local timestamp, second precision
	InceptionDate      string                    `json:"inception_date"`
	ReposScanned       int                       `json:"repos_scanned"`
	TotalCommits       int                       `json:"total_commits"`
	ScoringMethod      ScoringMethod             `json:"scoring_method"`
	Monthly            []MonthlyBucket           `json:"monthly"`
	MonthlyRegex       []MonthlyBucket           `json:"monthly_regex,omitempty"` // Pattern-only shadow series, present under enrichment
	Weekly             []WeeklyBucket            `json:"weekly"`
	Models             Models                    `json:"models"`
	Current            CurrentState              `json:"current"`
	CategoryMonthly    map[string]map[string]int `json:"category_monthly"` // month -> category -> rounded points
	RepoStats          []ReportRepoStat          `json:"repo_stats"`
	ConvergenceHistory []HistoryEntry            `json:"convergence_history"`
}

// ReportRepoStat is the per-repository rollup in the report, sorted by
// capability contribution.
type ReportRepoStat struct {
	Name            string   `json:"name"` // Basename, parent-qualified on collision
	Commits         int      `json:"commits"`
	Capability      int      `json:"capability"`
	PctContribution float64  `json:"pct_contribution"` // Share of total capability, 1 decimal
	TopCategories   []string `json:"top_categories"`   // Up to three categories by points
	FirstActivity   string   `json:"first_activity"`   // ISO date of the earliest commit
	LastActivity    string   `json:"last_activity"`    // ISO date of the latest commit
}
