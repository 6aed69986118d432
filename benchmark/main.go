// Package main provides a performance benchmarking tool for the capcurve
// scoring and model-fitting pipeline. It generates synthetic commit
// histories of increasing size, times rubric scoring, monthly aggregation
// and curve fitting separately, treating the first run as cold and
// averaging the rest as warm, and writes CSV output for performance
// analysis and documentation.
//
// Usage: go run benchmark/main.go [output-csv]
//
//	output-csv: Path for the CSV results (default benchmark_results.csv)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/capcurve/capcurve/core/aggregate"
	"github.com/capcurve/capcurve/core/curvefit"
	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/schema"
)

// BenchmarkResult holds the result of one benchmark stage (cold run and average of warm runs).
type BenchmarkResult struct {
	Commits  int
	Stage    string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CommitCounts []int
	WarmRuns     int
	Seed         int64
}

// subjectTemplates mixes high- and low-scoring subjects so the rubric
// exercises both its match and miss paths.
var subjectTemplates = []string{
	"Add multi-agent planning loop for task %d",
	"Implement streaming tool execution pipeline %d",
	"Fix typo in README section %d",
	"Refactor memory retrieval cache, pass %d",
	"Bump dependency version %d",
	"Add reinforcement fine-tuning schedule %d",
	"Update CI matrix entry %d",
	"Introduce self-correction step for run %d",
}

func main() {
	outPath := "benchmark_results.csv"
	if len(os.Args) == 2 {
		outPath = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [output-csv]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CommitCounts: []int{1000, 10000, 100000},
		WarmRuns:     4,
		Seed:         42,
	}

	results := runBenchmarks(config)

	if err := saveResults(outPath, results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
	fmt.Printf("\nResults written to %s\n", outPath)
}

// generateCommits builds a deterministic synthetic history spread over
// three years of activity.
func generateCommits(n int, seed int64) []schema.Commit {
	rng := rand.New(rand.NewSource(seed))
	epoch := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	commits := make([]schema.Commit, n)
	for i := range commits {
		commits[i] = schema.Commit{
			Hash:    fmt.Sprintf("%040x", i),
			Date:    epoch.AddDate(0, 0, rng.Intn(3*365)),
			Subject: fmt.Sprintf(subjectTemplates[i%len(subjectTemplates)], i),
			Repo:    fmt.Sprintf("repo-%d", i%8),
		}
	}
	return commits
}

// runBenchmarks executes all benchmark stages across configured history sizes.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: sizes %v, warm runs: %d\n", config.CommitCounts, config.WarmRuns)

	rubric := scoring.DefaultRubric()
	thresholds := schema.DefaultThresholds()

	for _, n := range config.CommitCounts {
		fmt.Printf("Benchmarking %d commits\n", n)
		commits := generateCommits(n, config.Seed)
		epoch := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := epoch.AddDate(3, 0, 0)

		// Stage 1: rubric scoring with diffstat weighting.
		var entries []aggregate.Entry
		scoreStage := func() {
			entries = make([]aggregate.Entry, len(commits))
			for i, c := range commits {
				sc := rubric.Score(c.Subject)
				ds := &schema.DiffStat{Added: 40 + i%200, Deleted: i % 30, Files: 1 + i%5, Source: 30 + i%150, NewFiles: i % 3}
				sc = scoring.ApplyDiffstatWeight(sc, ds, thresholds)
				entries[i] = aggregate.Entry{Commit: c, Score: sc}
			}
		}
		results = append(results, runStage(config, n, "scoring", scoreStage))

		// Stage 2: monthly and weekly aggregation.
		var monthly []schema.MonthlyBucket
		aggStage := func() {
			monthly, _, _ = aggregate.Monthly(entries, nil, epoch, end, rubric, aggregate.DefaultSmoothingAlpha)
			aggregate.Weekly(entries, epoch, end)
		}
		results = append(results, runStage(config, n, "aggregation", aggStage))

		// Stage 3: model fitting over the aggregated series.
		fitStage := func() {
			curvefit.FitModels(monthly, epoch)
		}
		results = append(results, runStage(config, n, "fitting", fitStage))
	}

	return results
}

// runStage times one stage: a single cold run, then averaged warm runs.
func runStage(config BenchmarkConfig, commits int, stage string, fn func()) BenchmarkResult {
	coldStart := time.Now()
	fn()
	cold := time.Since(coldStart)

	var warmTotal time.Duration
	for range config.WarmRuns {
		start := time.Now()
		fn()
		warmTotal += time.Since(start)
	}
	warm := warmTotal / time.Duration(config.WarmRuns)

	fmt.Printf("  %-12s cold=%v warm=%v\n", stage, cold.Round(time.Microsecond), warm.Round(time.Microsecond))
	return BenchmarkResult{
		Commits:  commits,
		Stage:    stage,
		ColdTime: cold.Round(time.Microsecond).String(),
		WarmTime: warm.Round(time.Microsecond).String(),
	}
}

// saveResults writes benchmark results to a CSV file.
func saveResults(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"commits", "stage", "cold_time", "warm_time"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{fmt.Sprintf("%d", r.Commits), r.Stage, r.ColdTime, r.WarmTime}); err != nil {
			return err
		}
	}
	return nil
}

// printSummary prints a compact table of all results.
func printSummary(results []BenchmarkResult) {
	fmt.Println("\nSummary:")
	fmt.Printf("%-10s %-12s %-12s %-12s\n", "Commits", "Stage", "Cold", "Warm")
	for _, r := range results {
		fmt.Printf("%-10d %-12s %-12s %-12s\n", r.Commits, r.Stage, r.ColdTime, r.WarmTime)
	}
}
