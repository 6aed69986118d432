package aggregate

import (
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/capcurve/capcurve/schema"
)

const topCategoryCount = 3

type repoTally struct {
	repo       string
	commits    int
	capability float64
	cats       map[string]float64
	first      time.Time
	last       time.Time
}

// RepoStats summarizes per-repository contribution across the scored
// set. Repositories are labeled by directory basename, widened to
// parent/basename when two repositories share a basename. Results are
// sorted by capability, largest first.
func RepoStats(scored []Entry, totalCapability float64) []schema.ReportRepoStat {
	if len(scored) == 0 {
		return []schema.ReportRepoStat{}
	}

	tallies := make(map[string]*repoTally)
	var order []string
	for _, e := range scored {
		t, ok := tallies[e.Commit.Repo]
		if !ok {
			t = &repoTally{
				repo:  e.Commit.Repo,
				cats:  make(map[string]float64),
				first: e.Commit.Date,
				last:  e.Commit.Date,
			}
			tallies[e.Commit.Repo] = t
			order = append(order, e.Commit.Repo)
		}
		t.commits++
		t.capability += e.Score.Total
		for cat, score := range e.Score.Categories {
			t.cats[cat] += score
		}
		if e.Commit.Date.Before(t.first) {
			t.first = e.Commit.Date
		}
		if e.Commit.Date.After(t.last) {
			t.last = e.Commit.Date
		}
	}

	baseCount := make(map[string]int)
	for _, repo := range order {
		baseCount[filepath.Base(repo)]++
	}

	stats := make([]schema.ReportRepoStat, 0, len(order))
	for _, repo := range order {
		t := tallies[repo]
		name := filepath.Base(repo)
		if baseCount[name] > 1 {
			name = filepath.Join(filepath.Base(filepath.Dir(repo)), name)
		}

		pct := 0.0
		if totalCapability > 0 {
			pct = roundTo(t.capability/totalCapability*100, 1)
		}

		stats = append(stats, schema.ReportRepoStat{
			Name:            name,
			Commits:         t.commits,
			Capability:      int(math.Round(t.capability)),
			PctContribution: pct,
			TopCategories:   topCategories(t.cats),
			FirstActivity:   schema.ISODate(t.first),
			LastActivity:    schema.ISODate(t.last),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Capability != stats[j].Capability {
			return stats[i].Capability > stats[j].Capability
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// topCategories picks the heaviest scoring categories for one repo.
func topCategories(cats map[string]float64) []string {
	type catScore struct {
		name  string
		score float64
	}
	ranked := make([]catScore, 0, len(cats))
	for name, score := range cats {
		if score > 0 {
			ranked = append(ranked, catScore{name, score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > topCategoryCount {
		ranked = ranked[:topCategoryCount]
	}
	names := make([]string, len(ranked))
	for i, c := range ranked {
		names[i] = c.name
	}
	return names
}
