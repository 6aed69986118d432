package jsoncache

import (
	"os"
	"path/filepath"

	"github.com/capcurve/capcurve/schema"
)

// ScoreCache holds pattern scores keyed by commit hash. Entries carry
// their own version stamp on top of the file version, so a scoring
// formula change invalidates old entries even inside a current file.
type ScoreCache struct {
	c *Cache[schema.ScoreCacheEntry]
}

// LoadScoreCache reads the score cache from a data directory.
func LoadScoreCache(dir string) *ScoreCache {
	return &ScoreCache{c: Load(filepath.Join(dir, schema.ScoreCacheFileName), schema.ScoreCacheVersion, validScoreEntry)}
}

// validScoreEntry spot-checks a score entry. Totals below the scoring
// floor or scores for nonexistent categories mean a corrupted file.
func validScoreEntry(entry schema.ScoreCacheEntry) bool {
	if entry.Version < 1 || entry.Total < 0.5 {
		return false
	}
	for name, score := range entry.Categories {
		if name == "" || score <= 0 {
			return false
		}
	}
	return true
}

// Get returns the cached score for a commit hash. Entries written by an
// older scoring formula read as misses.
func (s *ScoreCache) Get(hash string) (schema.ScoredCommit, bool) {
	entry, ok := s.c.Get(hash)
	if !ok || entry.Version != schema.ScoreCacheVersion {
		return schema.ScoredCommit{}, false
	}
	return schema.ScoredCommit{Total: entry.Total, Categories: entry.Categories}, true
}

// Put stores a score under a commit hash at the current formula version.
func (s *ScoreCache) Put(hash string, score schema.ScoredCommit) {
	s.c.Put(hash, schema.ScoreCacheEntry{
		Version:    schema.ScoreCacheVersion,
		Total:      score.Total,
		Categories: score.Categories,
	})
}

// Len returns the number of cached scores.
func (s *ScoreCache) Len() int { return s.c.Len() }

// Save writes the score cache to disk.
func (s *ScoreCache) Save() error { return s.c.Save() }

// Status reports the on-disk state of the score cache.
func (s *ScoreCache) Status() schema.CacheStatus { return s.c.Status() }

// LoadDiffstatCache reads the per-commit diffstat cache from a data
// directory. Diffstats are immutable per hash, so cached entries spare
// a numstat pass over already-seen history.
func LoadDiffstatCache(dir string) *Cache[schema.DiffStat] {
	return Load(filepath.Join(dir, schema.DiffstatCacheFileName), schema.DiffstatCacheVersion, validDiffstat)
}

// validDiffstat spot-checks a diffstat entry: counts are non-negative
// and the kind splits never exceed the total added lines.
func validDiffstat(ds schema.DiffStat) bool {
	if ds.Added < 0 || ds.Deleted < 0 || ds.Files < 0 || ds.NewFiles < 0 {
		return false
	}
	if ds.Source < 0 || ds.Test < 0 || ds.Config < 0 {
		return false
	}
	return ds.Source+ds.Test+ds.Config <= ds.Added
}

// LoadEnrichCache reads the enrichment cache from a data directory.
// It holds classifier verdicts as category hit maps keyed by commit
// hash; commits the classifier never judged are simply absent.
func LoadEnrichCache(dir string) *Cache[schema.CategoryHits] {
	return Load(filepath.Join(dir, schema.EnrichCacheFileName), schema.EnrichCacheVersion, validEnrichEntry)
}

// validEnrichEntry spot-checks a classifier verdict: hit counts live
// in [1, 3] under non-empty category names.
func validEnrichEntry(hits schema.CategoryHits) bool {
	for name, count := range hits {
		if name == "" || count < 1 || count > 3 {
			return false
		}
	}
	return true
}

// CacheFileNames lists every cache file a data directory may hold.
func CacheFileNames() []string {
	return []string{schema.ScoreCacheFileName, schema.DiffstatCacheFileName, schema.EnrichCacheFileName}
}

// ClearAll removes every cache file under a data directory and returns
// the names it removed. Missing files are not an error.
func ClearAll(dir string) ([]string, error) {
	var removed []string
	for _, name := range CacheFileNames() {
		path := filepath.Join(dir, name)
		err := os.Remove(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}
