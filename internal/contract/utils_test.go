package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Same(t, os.Stdout, f)
	})

	t.Run("non-empty path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.FileExists(t, path)
	})
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		expected bool
	}{
		{
			name:     "substring match",
			path:     "/home/dev/node_modules/pkg",
			patterns: []string{"node_modules"},
			expected: true,
		},
		{
			name:     "no match",
			path:     "/home/dev/project",
			patterns: []string{"archive", "tmp"},
			expected: false,
		},
		{
			name:     "blank patterns are ignored",
			path:     "/home/dev/project",
			patterns: []string{"", "  "},
			expected: false,
		},
		{
			name:     "nil patterns",
			path:     "/home/dev/project",
			patterns: nil,
			expected: false,
		},
		{
			name:     "pattern is trimmed before matching",
			path:     "/home/dev/vendor/thing",
			patterns: []string{"  vendor  "},
			expected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldSkip(tt.path, tt.patterns))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "work"), ExpandHome("~/work"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "relative", ExpandHome("relative"))
	// A tilde inside the path is not expansion syntax.
	assert.Equal(t, "/data/~cache", ExpandHome("/data/~cache"))
}

func TestResolveUnderRoot(t *testing.T) {
	root := t.TempDir()

	t.Run("path inside root", func(t *testing.T) {
		resolved, err := ResolveUnderRoot(root, filepath.Join(root, "repos"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "repos"), resolved)
	})

	t.Run("root itself", func(t *testing.T) {
		resolved, err := ResolveUnderRoot(root, root)
		require.NoError(t, err)
		assert.Equal(t, root, resolved)
	})

	t.Run("dot components are cleaned", func(t *testing.T) {
		resolved, err := ResolveUnderRoot(root, filepath.Join(root, "a", "..", "b"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "b"), resolved)
	})

	t.Run("traversal escape is rejected", func(t *testing.T) {
		_, err := ResolveUnderRoot(root, filepath.Join(root, ".."))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the trusted root")
	})

	t.Run("unrelated absolute path is rejected", func(t *testing.T) {
		_, err := ResolveUnderRoot(root, "/etc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the trusted root")
	})
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{
			name:     "short path unchanged",
			path:     "main.go",
			maxWidth: 20,
			expected: "main.go",
		},
		{
			name:     "long path keeps the tail",
			path:     "internal/contract/utils.go",
			maxWidth: 11,
			expected: "...utils.go",
		},
		{
			name:     "width too small to truncate",
			path:     "internal/contract/utils.go",
			maxWidth: 3,
			expected: "internal/contract/utils.go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"no", "No", "false", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestDefaultHistoryDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", ".capcurve_history.db"), DefaultHistoryDBPath("/data"))
}

// FuzzShouldSkip fuzzes skip matching with arbitrary paths and
// comma-separated pattern lists.
func FuzzShouldSkip(f *testing.F) {
	seeds := []struct {
		path     string
		patterns string
	}{
		{"main.go", "node_modules"},
		{"vendor/package/file.go", "vendor"},
		{"/home/dev/archive/old", "archive,tmp"},
		{"", ""},
		{"weird//path/..", " , ,"},
	}
	for _, s := range seeds {
		f.Add(s.path, s.patterns)
	}

	f.Fuzz(func(t *testing.T, path, patterns string) {
		split := strings.Split(patterns, ",")
		got := ShouldSkip(path, split)
		if got {
			// A positive result must be justified by one of the patterns.
			found := false
			for _, pat := range split {
				pat = strings.TrimSpace(pat)
				if pat != "" && strings.Contains(path, pat) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("ShouldSkip(%q, %q) = true without a matching pattern", path, patterns)
			}
		}
	})
}

// FuzzTruncatePath ensures truncation never exceeds the width and never
// panics for any width.
func FuzzTruncatePath(f *testing.F) {
	f.Add("internal/contract/utils.go", 10)
	f.Add("a", 0)
	f.Add("", -5)
	f.Add("ünïcödé/påth/file.go", 8)

	f.Fuzz(func(t *testing.T, path string, maxWidth int) {
		got := TruncatePath(path, maxWidth)
		if maxWidth > 3 && len([]rune(got)) > maxWidth {
			t.Fatalf("TruncatePath(%q, %d) = %q exceeds width", path, maxWidth, got)
		}
	})
}
