// Package schema has configs, models and global variables for all parts of capcurve.
package schema

import "time"

// Commit represents a single commit drawn from git history.
// It carries just enough metadata for rubric scoring; diff-level
// detail lives in DiffStat keyed by the same hash.
type Commit struct {
	Hash    string    // Full 40-hex commit hash
	Date    time.Time // Author date truncated to day precision
	Subject string    // First line of the commit message
	Repo    string    // Path of the repository the commit came from
}

// DiffStat summarizes the numstat output for a single commit.
// Field names are short on the wire to keep cache files compact.
type DiffStat struct {
	Added    int `json:"a"` // Lines added across all files
	Deleted  int `json:"d"` // Lines deleted across all files
	Files    int `json:"f"` // Number of files touched
	Source   int `json:"s"` // Lines added in source files
	Test     int `json:"t"` // Lines added in test files
	Config   int `json:"c"` // Lines added in config files
	NewFiles int `json:"n"` // Number of files introduced by this commit
}

// CategoryHits maps category name to a pattern hit count for one commit.
// Produced by the regex scorer and by the remote classifier alike.
type CategoryHits map[string]int

// ScoredCommit is the outcome of scoring a single commit: the total
// capability points plus the per-category contributions that sum to it
// before diffstat weighting.
type ScoredCommit struct {
	Total      float64            // Capability points after weighting and floors
	Categories map[string]float64 // Points earned per rubric category
}

// ScoreCacheEntry is the persisted form of a scored commit.
// Entries carry their own version so a rubric change invalidates
// old scores without discarding the whole file.
type ScoreCacheEntry struct {
	Version    int                `json:"v"` // Scoring version the entry was produced under
	Total      float64            `json:"total"`
	Categories map[string]float64 `json:"cats"`
}
