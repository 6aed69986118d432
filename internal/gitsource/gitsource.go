// Package gitsource discovers git repositories and extracts the commit
// and diffstat records a scan works on. Per-repo failures are logged
// and skipped so a single broken checkout never sinks a scan.
package gitsource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// Per-repo timeouts. Diffstat extraction walks the full numstat output
// twice, so it gets the longer budget.
const (
	commitLogTimeout = 30 * time.Second
	diffstatTimeout  = 60 * time.Second
)

// DiscoverRepos collects git repositories from the explicit scan dirs
// and a depth-limited walk under the broad-scan root. A scan dir that
// is itself a repository counts; otherwise its direct children are
// checked. Skip patterns match as substrings of the full path. The
// result is sorted and duplicate-free.
func DiscoverRepos(cfg *contract.Config) []string {
	found := make(map[string]struct{})

	add := func(path string) {
		if contract.ShouldSkip(path, cfg.SkipPatterns) {
			return
		}
		found[path] = struct{}{}
	}

	for _, dir := range cfg.ScanDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if isGitRepo(dir) {
			add(dir)
			continue
		}
		children, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, child := range children {
			childPath := filepath.Join(dir, child.Name())
			if child.IsDir() && isGitRepo(childPath) {
				add(childPath)
			}
		}
	}

	if cfg.BroadScanRoot != "" {
		if err := walkForRepos(cfg.BroadScanRoot, cfg.BroadScanDepth, add); err != nil {
			contract.LogWarn("broad repository scan failed", err)
		}
	}

	repos := make([]string, 0, len(found))
	for repo := range found {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

// walkForRepos walks root up to maxDepth directory levels, reporting
// every directory that contains a .git entry. It does not descend into
// repositories, so nested checkouts under a repo are not double-counted.
func walkForRepos(root string, maxDepth int, add func(string)) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree; keep walking the rest.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		depth := pathDepth(root, path)
		if depth > maxDepth {
			return fs.SkipDir
		}
		if path != root && isGitRepo(path) {
			add(path)
			return fs.SkipDir
		}
		return nil
	})
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func isGitRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// ExtractCommits reads the full commit log of every repository,
// deduplicates commits by hash (the first repository seen wins) and
// returns them sorted by date ascending. Lines with unparseable dates
// are dropped.
func ExtractCommits(ctx context.Context, client contract.GitClient, repos []string) []schema.Commit {
	seen := make(map[string]schema.Commit)

	for _, repo := range repos {
		out, err := commitLog(ctx, client, repo)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("skipping %s", filepath.Base(repo)), err)
			continue
		}
		count := 0
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if line == "" || !strings.Contains(line, "|") {
				continue
			}
			parts := strings.SplitN(line, "|", 3)
			if len(parts) < 3 {
				continue
			}
			hash := strings.TrimSpace(parts[0])
			dateStr := strings.TrimSpace(parts[1])
			subject := strings.TrimSpace(parts[2])
			if _, ok := seen[hash]; ok {
				continue
			}
			if len(dateStr) < 10 {
				continue
			}
			date, err := schema.ParseISODate(dateStr[:10])
			if err != nil {
				continue
			}
			seen[hash] = schema.Commit{Hash: hash, Date: date, Subject: subject, Repo: repo}
			count++
		}
		fmt.Printf("  %s: %d new commits\n", filepath.Base(repo), count)
	}

	commits := make([]schema.Commit, 0, len(seen))
	for _, c := range seen {
		commits = append(commits, c)
	}
	sort.Slice(commits, func(i, j int) bool {
		if !commits[i].Date.Equal(commits[j].Date) {
			return commits[i].Date.Before(commits[j].Date)
		}
		return commits[i].Hash < commits[j].Hash
	})
	return commits
}

func commitLog(ctx context.Context, client contract.GitClient, repo string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commitLogTimeout)
	defer cancel()
	return client.CommitLog(ctx, repo)
}
