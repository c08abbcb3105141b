package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinex/repowiki/internal/index"
)

func newTestContext(t *testing.T) *ToolContext {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "foo.go"), []byte("package foo\nfunc Foo() {}\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	idx, err := index.OpenInMemory(root)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	if _, err := idx.IndexRepository(); err != nil {
		t.Fatalf("index repository: %v", err)
	}

	return &ToolContext{RepoRoot: root, Index: idx, MaxExcerptLines: 120}
}

func TestExecuteCallUnknownTool(t *testing.T) {
	r, err := NewDefaultRegistry(newTestContext(t))
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	result := r.ExecuteCall(context.Background(), "frobnicate", "{}")
	if result.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if !containsAll(result.OutputSummary, "frobnicate", "search_chunks") {
		t.Errorf("expected enumeration of known tools, got %q", result.OutputSummary)
	}
}

func TestExecuteCallInvalidArguments(t *testing.T) {
	r, err := NewDefaultRegistry(newTestContext(t))
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	result := r.ExecuteCall(context.Background(), "get_excerpt", `{"path":"foo.go","startLine":-1,"endLine":3}`)
	if result.Success {
		t.Fatal("expected validation failure for negative startLine")
	}
	if !containsAll(result.Error, "Validation failed") {
		t.Errorf("expected 'Validation failed' in error, got %q", result.Error)
	}
}

func TestExecuteCallGetExcerptClampsEndLine(t *testing.T) {
	r, err := NewDefaultRegistry(newTestContext(t))
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	result := r.ExecuteCall(context.Background(), "get_excerpt", `{"path":"foo.go","startLine":1,"endLine":100}`)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if !containsAll(result.OutputSummary, "(lines 1-3 of 3)") {
		t.Errorf("expected endLine clamped to the file's 3 lines, got %q", result.OutputSummary)
	}
}

func TestExecuteCallSearchChunksEmptyQuerySucceeds(t *testing.T) {
	r, err := NewDefaultRegistry(newTestContext(t))
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	result := r.ExecuteCall(context.Background(), "search_chunks", `{"query":"\"   \""}`)
	if !result.Success {
		t.Fatalf("expected success on stop-character-only query, got %q", result.Error)
	}
}

func TestPathContainmentRejectsEscape(t *testing.T) {
	tc := newTestContext(t)
	result := getExcerptHandler(context.Background(), map[string]any{
		"path": "../etc/passwd", "startLine": float64(1), "endLine": float64(1),
	}, tc)
	if result.Success {
		t.Fatal("expected containment violation to fail")
	}
	if !containsAll(result.Error, "outside repository") {
		t.Errorf("expected 'outside repository' in error, got %q", result.Error)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	return len(sub) == 0 || (len(s) >= len(sub) && indexOf(s, sub) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
