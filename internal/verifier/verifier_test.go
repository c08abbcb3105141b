package verifier

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyMarkdownRoundTrip(t *testing.T) {
	citations := []Citation{
		{Path: "main.go", StartLine: 1, EndLine: 10},
		{Path: "internal/index/search.go", StartLine: 42, EndLine: 58},
	}
	markdown := "# Answer\n\nSome prose.\n\n" + Render(citations)

	result := VerifyMarkdown(markdown)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Citations) != len(citations) {
		t.Fatalf("expected %d citations, got %d", len(citations), len(result.Citations))
	}
	for i, c := range citations {
		if result.Citations[i] != c {
			t.Errorf("citation %d mismatch: want %+v got %+v", i, c, result.Citations[i])
		}
	}
	if result.FromMarkup != true {
		t.Error("expected FromMarkup=true for VerifyMarkdown")
	}
}

func TestVerifyMarkdownMissingSourcesSection(t *testing.T) {
	result := VerifyMarkdown("# Answer\n\nNo sources here.\n")
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Missing Sources section" {
		t.Errorf("expected 'Missing Sources section' error, got %v", result.Errors)
	}
}

func TestVerifyMarkdownStructuralErrors(t *testing.T) {
	markdown := "## Sources\n- `main.go`:0-3\n- `foo.go`:10-5\n"
	result := VerifyMarkdown(markdown)
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 structural errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Citations) != 0 {
		t.Errorf("expected zero surviving citations, got %d", len(result.Citations))
	}
}

func TestVerifySucceedsAgainstRealFile(t *testing.T) {
	root := t.TempDir()
	content := "line1\nline2\nline3\nline4\n"
	if err := os.WriteFile(filepath.Join(root, "foo.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	markdown := "## Sources\n- `foo.go`:1-3\n"
	result := Verify(root, markdown)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("expected one citation, got %d", len(result.Citations))
	}
}

func TestVerifyRejectsPathEscape(t *testing.T) {
	root := t.TempDir()
	markdown := "## Sources\n- `../etc/passwd`:1-2\n"
	result := Verify(root, markdown)
	if result.Valid {
		t.Fatal("expected invalid result for path escape")
	}
	if len(result.Errors) != 1 || !containsSubstring(result.Errors[0], "outside repository") {
		t.Errorf("expected 'outside repository' error, got %v", result.Errors)
	}
}

func TestVerifyRejectsNonexistentFile(t *testing.T) {
	root := t.TempDir()
	markdown := "## Sources\n- `missing.go`:1-2\n"
	result := Verify(root, markdown)
	if result.Valid {
		t.Fatal("expected invalid result for missing file")
	}
	if len(result.Errors) != 1 || !containsSubstring(result.Errors[0], "does not exist") {
		t.Errorf("expected 'does not exist' error, got %v", result.Errors)
	}
}

func TestVerifyRejectsLineRangeBeyondFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "foo.go"), []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	markdown := "## Sources\n- `foo.go`:1-100\n"
	result := Verify(root, markdown)
	if result.Valid {
		t.Fatal("expected invalid result for out-of-range citation")
	}
	if len(result.Errors) != 1 || !containsSubstring(result.Errors[0], "exceeds file length") {
		t.Errorf("expected 'exceeds file length' error, got %v", result.Errors)
	}
}

func TestVerifyStopsAtNextHeader(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "foo.go"), []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	markdown := "## Sources\n- `foo.go`:1-2\n\n## Appendix\n- `bar.go`:1-2\n"
	result := Verify(root, markdown)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("expected only the citation inside the Sources section, got %d", len(result.Citations))
	}
}

func TestVerifyAcceptsAsteriskBullet(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "foo.go"), []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	markdown := "## Sources\n* `foo.go`:1-2\n"
	result := Verify(root, markdown)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
