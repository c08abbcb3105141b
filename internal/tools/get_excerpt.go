package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// GetExcerptDescriptor reads a bounded line range from a file. Grounded on
// tools/filesystem.go's ReadFileTool (line-numbered rendering, containment
// check), reading live from disk rather than the index so excerpts always
// reflect the current file.
func GetExcerptDescriptor() Descriptor {
	return Descriptor{
		Name:        "get_excerpt",
		Description: "Read a line range from a repository file, with line numbers.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":      map[string]any{"type": "string", "minLength": 1},
				"startLine": map[string]any{"type": "integer", "minimum": 1},
				"endLine":   map[string]any{"type": "integer", "minimum": 1},
			},
			"required": []any{"path", "startLine", "endLine"},
		},
		Handler: getExcerptHandler,
	}
}

func getExcerptHandler(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult {
	path := argString(args, "path", "")
	startLine := argInt(args, "startLine", 1)
	endLine := argInt(args, "endLine", startLine)

	full, ok := resolveInRepo(tc.RepoRoot, path)
	if !ok {
		return Fail("get_excerpt: path %q outside repository", path)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return Fail("get_excerpt: %v", err)
	}

	lines := strings.Split(string(content), "\n")
	lineCount := len(lines)

	if startLine < 1 {
		startLine = 1
	}
	if startLine > lineCount {
		startLine = lineCount
	}
	if endLine > lineCount {
		endLine = lineCount
	}
	if endLine < startLine {
		endLine = startLine
	}

	truncatedNote := ""
	maxLines := tc.MaxExcerptLines
	if maxLines > 0 && endLine-startLine+1 > maxLines {
		endLine = startLine + maxLines - 1
		truncatedNote = " (truncated to excerpt budget)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (lines %d-%d of %d)%s\n", path, startLine, endLine, lineCount, truncatedNote)
	for i := startLine; i <= endLine; i++ {
		fmt.Fprintf(&b, "%d: %s\n", i, lines[i-1])
	}

	return Ok(map[string]any{"path": path, "startLine": startLine, "endLine": endLine}, strings.TrimRight(b.String(), "\n"))
}
