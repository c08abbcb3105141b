package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFilesDescriptor walks the repository tree and returns paths matching a
// glob. Grounded on tools/glob.go's `**`/`*`/`?` translation and
// findMatchesRecursive walk shape, reduced to the spec's single glob+limit
// argument pair.
func ListFilesDescriptor() Descriptor {
	return Descriptor{
		Name:        "list_files",
		Description: "List repository files matching a glob pattern (** for any depth, * for one segment, ? for one character).",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"glob": map[string]any{"type": "string", "minLength": 1},
				"limit": map[string]any{
					"type": "integer", "minimum": 1, "maximum": 1000, "default": 100,
				},
			},
			"required": []any{"glob"},
		},
		Handler: listFilesHandler,
	}
}

func listFilesHandler(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult {
	pattern := argString(args, "glob", "**/*")
	limit := argInt(args, "limit", 100)

	root, err := filepath.Abs(tc.RepoRoot)
	if err != nil {
		return Fail("list_files: %v", err)
	}

	var matches []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matchGlobPattern(rel, pattern) {
			matches = append(matches, rel)
			if len(matches) >= limit {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if walkErr != nil {
		return Fail("list_files: %v", walkErr)
	}

	sort.Strings(matches)

	var b strings.Builder
	shown := matches
	if len(shown) > 20 {
		shown = shown[:20]
	}
	for _, m := range shown {
		fmt.Fprintln(&b, m)
	}
	if len(matches) > len(shown) {
		fmt.Fprintf(&b, "... and %d more\n", len(matches)-len(shown))
	}
	if len(matches) == 0 {
		return Ok(matches, fmt.Sprintf("No files matched glob %q.", pattern))
	}
	return Ok(matches, strings.TrimRight(b.String(), "\n"))
}

// matchGlobPattern matches a repository-relative path against a glob
// pattern, with `**` matching any depth.
func matchGlobPattern(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	parts := strings.Split(pattern, "**")
	if len(parts) == 1 {
		return matchSegmentPattern(pattern, path)
	}

	prefix := strings.TrimSuffix(parts[0], "/")
	if prefix != "" && !strings.HasPrefix(path, prefix) {
		return false
	}

	suffix := strings.TrimPrefix(parts[len(parts)-1], "/")
	if suffix == "" {
		return true
	}
	if strings.Contains(suffix, "/") {
		return strings.HasSuffix(path, suffix)
	}
	return matchSegmentPattern(suffix, filepath.Base(path))
}

// matchSegmentPattern wraps filepath.Match (`*` matches within one path
// segment, `?` matches one character), returning false on a malformed
// pattern rather than propagating the error.
func matchSegmentPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	return err == nil && matched
}
