// Package scoring turns commit subjects and diffstats into capability points.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/capcurve/capcurve/schema"
)

const (
	// maxPatternHits caps how many pattern matches count per category,
	// so verbose subjects cannot dominate a single category.
	maxPatternHits = 3

	// minCommitScore is the floor for commits that match nothing.
	// Every commit contributes signal to the cumulative series.
	minCommitScore = 0.5

	// mergeFeatureFactor scales merged feature PRs, which land squashed
	// work that individual subjects undercount.
	mergeFeatureFactor = 1.5

	// mergeFeatureFlat is granted when a merged feature PR matched no
	// category at all.
	mergeFeatureFlat = 2
)

// compiledCategory pairs a category weight with its compiled patterns.
type compiledCategory struct {
	weight   float64
	patterns []*regexp.Regexp
}

// Rubric is an immutable compiled scoring rubric. Construct one with
// NewRubric or DefaultRubric and share it freely across goroutines.
type Rubric struct {
	categories map[string]compiledCategory
	order      []string // category names sorted for deterministic iteration
	highLevel  map[string]struct{}
	lowLevel   map[string]struct{}
}

// NewRubric compiles category definitions into a Rubric. The maps are
// copied, so later mutation of the inputs has no effect.
func NewRubric(defs map[string]schema.CategoryDef, high, low map[string]struct{}) (*Rubric, error) {
	r := &Rubric{
		categories: make(map[string]compiledCategory, len(defs)),
		highLevel:  make(map[string]struct{}, len(high)),
		lowLevel:   make(map[string]struct{}, len(low)),
	}
	for name, def := range defs {
		cc := compiledCategory{weight: def.Weight, patterns: make([]*regexp.Regexp, 0, len(def.Patterns))}
		for _, p := range def.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %s: bad pattern %q: %w", name, p, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		r.categories[name] = cc
		r.order = append(r.order, name)
	}
	sort.Strings(r.order)
	for name := range high {
		r.highLevel[name] = struct{}{}
	}
	for name := range low {
		r.lowLevel[name] = struct{}{}
	}
	return r, nil
}

// DefaultRubric compiles the built-in rubric.
func DefaultRubric() *Rubric {
	r, err := NewRubric(schema.DefaultCategories(), schema.DefaultHighLevelCategories(), schema.DefaultLowLevelCategories())
	if err != nil {
		// Built-in patterns are static, so this cannot happen.
		panic(err)
	}
	return r
}

// Categories returns the category names in sorted order.
func (r *Rubric) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether a category name belongs to the rubric.
func (r *Rubric) Has(name string) bool {
	_, ok := r.categories[name]
	return ok
}

// Weight returns the weight of a category, or 0 for unknown names.
func (r *Rubric) Weight(name string) float64 {
	return r.categories[name].weight
}

// Patterns returns the source patterns of a category.
func (r *Rubric) Patterns(name string) []string {
	cc, ok := r.categories[name]
	if !ok {
		return nil
	}
	out := make([]string, len(cc.patterns))
	for i, p := range cc.patterns {
		out[i] = p.String()
	}
	return out
}

// IsHighLevel reports whether a category counts toward sophistication.
func (r *Rubric) IsHighLevel(name string) bool {
	_, ok := r.highLevel[name]
	return ok
}

// HighLevelCount returns the size of the high-level category set.
func (r *Rubric) HighLevelCount() int {
	return len(r.highLevel)
}

// Score rates one commit subject against the rubric. Per category the
// pattern hit count is capped at maxPatternHits and multiplied by the
// category weight; zero-hit categories are omitted. Merged feature PRs
// get scaled, and anything that matched nothing floors at
// minCommitScore.
func (r *Rubric) Score(subject string) schema.ScoredCommit {
	lower := strings.ToLower(subject)
	cats := make(map[string]float64)
	var total float64

	for _, name := range r.order {
		cc := r.categories[name]
		hits := 0
		for _, p := range cc.patterns {
			if p.MatchString(lower) {
				hits++
			}
		}
		if hits > 0 {
			score := cc.weight * float64(min(hits, maxPatternHits))
			cats[name] = score
			total += score
		}
	}

	if strings.Contains(lower, "merge pull request") && strings.Contains(lower, "feat") {
		if total > 0 {
			total = math.Trunc(total * mergeFeatureFactor)
		} else {
			total = mergeFeatureFlat
		}
	}

	if total == 0 {
		total = minCommitScore
	}

	return schema.ScoredCommit{Total: total, Categories: cats}
}

// ScoreHits converts classifier hit counts into a scored commit.
// Unknown categories are dropped and hit counts clamp to [1, 3].
// No merge bonus applies since the classifier already judged the
// subject as a whole.
func (r *Rubric) ScoreHits(hits schema.CategoryHits) schema.ScoredCommit {
	cats := make(map[string]float64)
	var total float64
	for name, n := range hits {
		cc, ok := r.categories[name]
		if !ok {
			continue
		}
		clamped := min(max(n, 1), maxPatternHits)
		score := cc.weight * float64(clamped)
		cats[name] = score
		total += score
	}
	if total == 0 {
		total = minCommitScore
	}
	return schema.ScoredCommit{Total: total, Categories: cats}
}
