package schema

import "time"

// CacheStatus summarizes one on-disk cache file for the status command.
type CacheStatus struct {
	Name         string `json:"name"`          // Cache file name
	Exists       bool   `json:"exists"`        // Whether the file is present
	Version      int    `json:"version"`       // Current cache format version
	Entries      int    `json:"entries"`       // Number of keyed entries
	SizeBytes    int64  `json:"size_bytes"`    // File size on disk
	ModifiedTime string `json:"modified_time"` // Last modification, ISO seconds
}

// HistoryStatus summarizes the run history archive.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord is one archived scan run as stored in the history database.
type RunRecord struct {
	RunID           int64
	RunUUID         string
	ScanTime        time.Time
	ScoringMethod   string
	ReposScanned    int32
	TotalCommits    int32
	TotalCapability float64
	PctOfAsymptote  float64
	ConvergenceDate *string
	CapabilityL     int32
	CapabilityR2    float64
	CommitRateR2    float64
	DurationMS      int64
}
