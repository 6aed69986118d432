package gitsource

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/jsoncache"
	"github.com/capcurve/capcurve/schema"
)

const hashLength = 40

// isHash reports whether a trimmed log line is a bare commit hash.
func isHash(line string) bool {
	if len(line) != hashLength {
		return false
	}
	for _, c := range line {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ExtractDiffstats fills the diffstat cache for every uncached commit
// across the repositories. Two log passes per repo: numstat for line
// counts classified by file kind, then --diff-filter=A for the count
// of files the commit introduced. Returns the number of new entries.
func ExtractDiffstats(ctx context.Context, client contract.GitClient, repos []string, cache *jsoncache.Cache[schema.DiffStat]) int {
	totalNew := 0
	for _, repo := range repos {
		pending, err := numstatPass(ctx, client, repo, cache)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("%s: diffstat extraction failed", filepath.Base(repo)), err)
			continue
		}
		if len(pending) == 0 {
			continue
		}

		newFiles, err := addedFilesPass(ctx, client, repo, pending)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("%s: new-file count failed", filepath.Base(repo)), err)
			// Line counts are still worth keeping; new-file counts stay zero.
			newFiles = map[string]int{}
		}

		for hash, ds := range pending {
			ds.NewFiles = newFiles[hash]
			cache.Put(hash, ds)
		}
		totalNew += len(pending)
		fmt.Printf("  %s: %d new diffstats\n", filepath.Base(repo), len(pending))
	}
	return totalNew
}

// numstatPass parses one repo's numstat log into per-commit line
// counts. Hash lines delimit commits; blank lines are noise; binary
// files report "-" counts and are skipped. Commits already in the
// cache are not re-parsed.
func numstatPass(ctx context.Context, client contract.GitClient, repo string, cache *jsoncache.Cache[schema.DiffStat]) (map[string]schema.DiffStat, error) {
	ctx, cancel := context.WithTimeout(ctx, diffstatTimeout)
	defer cancel()

	out, err := client.NumstatLog(ctx, repo)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]schema.DiffStat)
	var current string
	var ds schema.DiffStat

	flush := func() {
		if current != "" {
			pending[current] = ds
		}
		current = ""
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHash(line) {
			flush()
			if _, ok := cache.Get(line); ok {
				continue
			}
			current = line
			ds = schema.DiffStat{}
			continue
		}
		if current == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] == "-" || parts[1] == "-" {
			continue
		}
		added, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		deleted, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		ds.Added += added
		ds.Deleted += deleted
		ds.Files++
		switch scoring.ClassifyFile(parts[2]) {
		case schema.SourceKind:
			ds.Source += added
		case schema.TestKind:
			ds.Test += added
		case schema.ConfigKind:
			ds.Config += added
		}
	}
	flush()
	return pending, nil
}

// addedFilesPass counts paths introduced by each pending commit.
// Only hashes in pending are tallied, so renames and edits elsewhere
// in history cost nothing.
func addedFilesPass(ctx context.Context, client contract.GitClient, repo string, pending map[string]schema.DiffStat) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, diffstatTimeout)
	defer cancel()

	out, err := client.AddedFilesLog(ctx, repo)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var current string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hash, ok := strings.CutPrefix(line, "COMMIT:"); ok {
			if _, want := pending[hash]; want {
				current = hash
			} else {
				current = ""
			}
			continue
		}
		if current != "" {
			counts[current]++
		}
	}
	return counts, nil
}
