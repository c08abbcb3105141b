// Package tools implements the tool registry and the five built-in tools
// (search_chunks, get_excerpt, list_files, graph_neighbors, get_repo_summary)
// that back the agent loop.
//
// Information Hiding:
// - Tool argument schemas are compiled once and reused for both validation
//   and provider serialization (a single source of truth per tool).
// - Path containment for path arguments lives in one helper
//   (resolveInRepo) shared by the handlers that take a path. Summaries are
//   not length-bounded here; the agent loop truncates them.
package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/richinex/repowiki/internal/index"
)

// ToolResult is the structured outcome of executing a tool. OutputSummary is
// the sole representation sent back to the LLM; it must be self-contained
// and human-readable.
type ToolResult struct {
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	OutputSummary string `json:"outputSummary"`
	Error         string `json:"error,omitempty"`
}

// Ok builds a successful result.
func Ok(data any, summary string) ToolResult {
	return ToolResult{Success: true, Data: data, OutputSummary: summary}
}

// Fail builds a failed result. The error message is also used verbatim as
// the output summary, since it is the only thing the LLM sees.
func Fail(format string, args ...any) ToolResult {
	msg := fmt.Sprintf(format, args...)
	return ToolResult{Success: false, OutputSummary: msg, Error: msg}
}

// ToolContext is the shared, stateless context every handler receives.
// Handlers must treat it as read-only.
type ToolContext struct {
	RepoRoot        string
	Index           *index.Index
	MaxExcerptLines int
}

// Handler executes a tool call given already-schema-validated arguments.
type Handler func(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult

// Descriptor is the immutable, registered shape of one tool: its name,
// description, JSON-Schema argument schema (as a raw document, compiled once
// at registration), and its handler.
type Descriptor struct {
	Name        string
	Description string
	Schema      map[string]any
	Handler     Handler
}

// resolveInRepo joins repoRoot and a repository-relative path, canonicalizes
// it, and reports whether the result is a descendant of repoRoot (defense
// against `..` escapes). The check is lexical (Abs+Clean); symbolic links
// are not resolved.
func resolveInRepo(repoRoot, relPath string) (string, bool) {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", false
	}
	full, err := filepath.Abs(filepath.Join(root, relPath))
	if err != nil {
		return "", false
	}
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
