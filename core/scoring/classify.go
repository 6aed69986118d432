package scoring

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/capcurve/capcurve/schema"
)

// renameBrace matches one brace-form git rename like "src/{old => new}/f.go".
var renameBrace = regexp.MustCompile(`\{[^}]*?=>\s*([^}]*?)\}`)

// resolveRename collapses git rename syntax to the post-rename path.
// Both the brace form and the plain "old => new" arrow form appear in
// numstat output; brace renames may occur more than once per path.
func resolveRename(path string) string {
	if !strings.Contains(path, "=>") {
		return path
	}
	for {
		m := renameBrace.FindStringSubmatchIndex(path)
		if m == nil {
			break
		}
		newPart := strings.TrimSpace(path[m[2]:m[3]])
		path = path[:m[0]] + newPart + path[m[1]:]
	}
	if strings.Contains(path, "=>") {
		parts := strings.Split(path, "=>")
		path = strings.TrimSpace(parts[len(parts)-1])
	}
	return path
}

// fileExt returns the lowercased extension of the final path element.
// A lone leading dot is a hidden-file marker, not an extension.
func fileExt(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(base[idx:])
}

// ClassifyFile buckets a changed path into a file kind. Test detection
// runs first so test files never count as source.
func ClassifyFile(path string) schema.FileKind {
	path = resolveRename(path)
	lower := strings.ToLower(path)
	for _, p := range schema.TestPatterns {
		if strings.Contains(lower, p) {
			return schema.TestKind
		}
	}
	ext := fileExt(path)
	if _, ok := schema.SourceExtensions[ext]; ok {
		return schema.SourceKind
	}
	if _, ok := schema.ConfigExtensions[ext]; ok {
		return schema.ConfigKind
	}
	if _, ok := schema.DocExtensions[ext]; ok {
		return schema.DocKind
	}
	return schema.OtherKind
}
