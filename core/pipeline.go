// Package core orchestrates the scan pipeline: discover repositories,
// extract and score commits, aggregate the series, fit growth models
// and assemble the report.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/capcurve/capcurve/core/aggregate"
	"github.com/capcurve/capcurve/core/curvefit"
	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/enrich"
	"github.com/capcurve/capcurve/internal/gitsource"
	"github.com/capcurve/capcurve/internal/jsoncache"
	"github.com/capcurve/capcurve/internal/outwriter"
	"github.com/capcurve/capcurve/internal/secrets"
	"github.com/capcurve/capcurve/schema"
)

// Run executes one full scan and returns the assembled report. The
// report is also written to data.json, appended to the convergence
// history and archived in the history store. The only hard failure is
// finding no commits at all; everything else degrades with warnings.
func Run(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.HistoryStore) (*schema.Report, error) {
	started := time.Now()

	rubric, err := scoring.NewRubric(cfg.Categories, cfg.HighLevel, cfg.LowLevel)
	if err != nil {
		return nil, fmt.Errorf("compiling rubric: %w", err)
	}
	out := cfg.Progress()

	fmt.Fprintln(out, "Discovering repositories...")
	repos := gitsource.DiscoverRepos(cfg)
	fmt.Fprintf(out, "Found %d repositories\n\n", len(repos))

	fmt.Fprintln(out, "Extracting commits (deduplicating by hash)...")
	commits := gitsource.ExtractCommits(ctx, client, repos)
	fmt.Fprintf(out, "\nTotal unique commits: %d\n", len(commits))
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits found across %d repositories", len(repos))
	}

	epoch := cfg.InceptionDate
	today := started
	fmt.Fprintf(out, "Date range: %s to %s\n", schema.ISODate(commits[0].Date), schema.ISODate(commits[len(commits)-1].Date))

	fmt.Fprintln(out, "\nExtracting diffstats...")
	diffCache := jsoncache.LoadDiffstatCache(cfg.DataDir)
	cachedDiffs := diffCache.Len()
	newDiffs := gitsource.ExtractDiffstats(ctx, client, repos, diffCache)
	if err := diffCache.Save(); err != nil {
		contract.LogWarn("could not persist diffstat cache", err)
	}
	fmt.Fprintf(out, "  %d cached, %d new\n", cachedDiffs, newDiffs)

	var enrichCache *jsoncache.Cache[schema.CategoryHits]
	method := schema.RegexMethod
	if cfg.Enrich {
		method = schema.MethodForModel(cfg.Model)
		fmt.Fprintln(out, "\nClassifying commits...")
		enrichCache = jsoncache.LoadEnrichCache(cfg.DataDir)
		apiKey, err := secrets.ResolveAPIKey(ctx, cfg.SecretID)
		if err != nil {
			contract.LogWarn("could not resolve classifier API key", err)
		}
		classifier := enrich.NewClient(cfg.APIBaseURL, schema.ValidClassifierModels[cfg.Model], apiKey, rubric)
		enriched, fallbacks := classifier.ClassifyCommits(ctx, commits, enrichCache)
		if err := enrichCache.Save(); err != nil {
			contract.LogWarn("could not persist classifier cache", err)
		}
		fmt.Fprintf(out, "  %d classified, %d fell back to pattern scoring\n", enriched, fallbacks)
	}

	fmt.Fprintln(out, "\nScoring commits...")
	scored, scoredRegex, cacheHits := scoreCommits(cfg, rubric, commits, diffCache, enrichCache)
	fmt.Fprintf(out, "  %d cached, %d scored fresh\n", cacheHits, len(commits)-cacheHits)

	fmt.Fprintln(out, "Aggregating by month and week...")
	monthly, monthlyRegex, catMonthly := aggregate.Monthly(scored, scoredRegex, epoch, today, rubric, cfg.SmoothingAlpha)
	weekly := aggregate.Weekly(scored, epoch, today)

	var totalCapability float64
	for _, entry := range scored {
		totalCapability += entry.Score.Total
	}
	repoStats := aggregate.RepoStats(scored, totalCapability)

	fmt.Fprintln(out, "\nFitting models...")
	models := curvefit.FitModels(monthly, epoch)

	current := currentState(commits, monthly, models, epoch, today)

	fmt.Fprintln(out, "\nRecording convergence history...")
	history := RecordHistory(out, filepath.Join(cfg.DataDir, schema.HistoryFileName), models, current, method, today)

	report := &schema.Report{
		Generated:          today.Format(schema.TimestampFormat),
		InceptionDate:      schema.ISODate(epoch),
		ReposScanned:       len(repos),
		TotalCommits:       len(commits),
		ScoringMethod:      method,
		Monthly:            monthly,
		MonthlyRegex:       monthlyRegex,
		Weekly:             weekly,
		Models:             models,
		Current:            current,
		CategoryMonthly:    catMonthly,
		RepoStats:          repoStats,
		ConvergenceHistory: history,
	}

	reportPath := filepath.Join(cfg.DataDir, schema.DataFileName)
	if err := outwriter.WriteReport(reportPath, report); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	archiveRun(store, report, totalCapability, started)

	outwriter.PrintScanSummary(cfg, report, reportPath)
	return report, nil
}

// scoreCommits scores every commit. Classified commits use the
// classifier verdict and skip the score cache, since their scores vary
// with the enrichment cache instead of the scoring formula. Everything
// else hits the score cache or is scored fresh and stored back. The
// second series is the pattern-only shadow, produced only under
// enrichment.
func scoreCommits(cfg *contract.Config, rubric *scoring.Rubric, commits []schema.Commit, diffCache *jsoncache.Cache[schema.DiffStat], enrichCache *jsoncache.Cache[schema.CategoryHits]) (scored, scoredRegex []aggregate.Entry, cacheHits int) {
	scoreCache := jsoncache.LoadScoreCache(cfg.DataDir)
	scored = make([]aggregate.Entry, 0, len(commits))
	if enrichCache != nil {
		scoredRegex = make([]aggregate.Entry, 0, len(commits))
	}

	patternScore := func(c schema.Commit, ds *schema.DiffStat) schema.ScoredCommit {
		if !cfg.NoCache {
			if sc, ok := scoreCache.Get(c.Hash); ok {
				cacheHits++
				return sc
			}
		}
		sc := scoring.ApplyDiffstatWeight(rubric.Score(c.Subject), ds, cfg.Thresholds)
		scoreCache.Put(c.Hash, sc)
		return sc
	}

	for _, c := range commits {
		var ds *schema.DiffStat
		if d, ok := diffCache.Get(c.Hash); ok {
			ds = &d
		}

		var sc schema.ScoredCommit
		if enrichCache != nil {
			if hits, ok := enrichCache.Get(c.Hash); ok {
				sc = scoring.ApplyDiffstatWeight(rubric.ScoreHits(hits), ds, cfg.Thresholds)
			} else {
				sc = patternScore(c, ds)
			}
			scoredRegex = append(scoredRegex, aggregate.Entry{Commit: c, Score: patternShadow(rubric, scoreCache, c, ds, cfg.Thresholds)})
		} else {
			sc = patternScore(c, ds)
		}
		scored = append(scored, aggregate.Entry{Commit: c, Score: sc})
	}

	if err := scoreCache.Save(); err != nil {
		contract.LogWarn("could not persist score cache", err)
	}
	return scored, scoredRegex, cacheHits
}

// patternShadow computes the comparison score for the pattern-only
// series without disturbing the cache-hit counter.
func patternShadow(rubric *scoring.Rubric, scoreCache *jsoncache.ScoreCache, c schema.Commit, ds *schema.DiffStat, th schema.Thresholds) schema.ScoredCommit {
	if sc, ok := scoreCache.Get(c.Hash); ok {
		return sc
	}
	sc := scoring.ApplyDiffstatWeight(rubric.Score(c.Subject), ds, th)
	scoreCache.Put(c.Hash, sc)
	return sc
}

// currentState assembles the latest-known snapshot for the report.
func currentState(commits []schema.Commit, monthly []schema.MonthlyBucket, models schema.Models, epoch, today time.Time) schema.CurrentState {
	current := schema.CurrentState{
		TotalCommits:       len(commits),
		LatestCommitDate:   schema.ISODate(commits[len(commits)-1].Date),
		DaysSinceInception: schema.DaysBetween(epoch, today),
	}
	if n := len(monthly); n > 0 {
		current.TotalCapability = monthly[n-1].CumulativeCapability
		current.CurrentSophistication = monthly[n-1].Sophistication
	}
	if models.Capability != nil {
		current.PctOfAsymptote = models.Capability.PctNow
	}
	return current
}

// archiveRun records the run in the history store. Archive failures
// warn; the report on disk is already complete at this point.
func archiveRun(store contract.HistoryStore, report *schema.Report, totalCapability float64, started time.Time) {
	if store == nil {
		return
	}

	rec := schema.RunRecord{
		ScanTime:        started,
		ScoringMethod:   string(report.ScoringMethod),
		ReposScanned:    int32(report.ReposScanned),
		TotalCommits:    int32(report.TotalCommits),
		TotalCapability: totalCapability,
		PctOfAsymptote:  report.Current.PctOfAsymptote,
		ConvergenceDate: report.Models.ConvergenceDate,
		DurationMS:      time.Since(started).Milliseconds(),
	}
	if report.Models.Capability != nil {
		rec.CapabilityL = int32(report.Models.Capability.L)
		rec.CapabilityR2 = report.Models.Capability.RSquared
	}
	if report.Models.CommitRate != nil {
		rec.CommitRateR2 = report.Models.CommitRate.RSquared
	}

	payload, err := json.Marshal(report)
	if err != nil {
		contract.LogWarn("could not marshal report for archiving", err)
		return
	}
	if _, err := store.Put(rec, payload); err != nil {
		contract.LogWarn("could not archive run", err)
	}
}
