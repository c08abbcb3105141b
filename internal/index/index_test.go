package index

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "foo.go", "package foo\n\nfunc Foo() {\n\treturn\n}\n")
	writeFile(t, root, "bar/baz.go", "package bar\n\nfunc Baz() {}\n")
	writeFile(t, root, "node_modules/skip.go", "package skip\n")
	writeFile(t, root, "README.md", "# Title\n\nSome docs about Foo.\n")

	idx, err := OpenInMemory(root)
	if err != nil {
		t.Fatalf("open in-memory index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	if _, err := idx.IndexRepository(); err != nil {
		t.Fatalf("index repository: %v", err)
	}
	return idx, root
}

func TestIndexRepositorySkipsIneligible(t *testing.T) {
	idx, _ := newTestIndex(t)

	if _, ok, _ := idx.ReadFile("node_modules/skip.go"); ok {
		t.Error("expected node_modules to be skipped")
	}
	if _, ok, err := idx.ReadFile("foo.go"); err != nil || !ok {
		t.Errorf("expected foo.go to be indexed, ok=%v err=%v", ok, err)
	}
}

func TestSearchFindsToken(t *testing.T) {
	idx, _ := newTestIndex(t)

	hits, err := idx.Search("Foo", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit for 'Foo'")
	}
	found := false
	for _, h := range hits {
		if h.Path == "foo.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected foo.go among hits, got %+v", hits)
	}
}

func TestSearchStopCharactersOnlyReturnsNoHits(t *testing.T) {
	idx, _ := newTestIndex(t)

	hits, err := idx.Search(`"   "`, 10)
	if err != nil {
		t.Fatalf("search on stop characters should succeed, got error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected zero hits, got %d", len(hits))
	}
}

func TestListFilesPrefix(t *testing.T) {
	idx, _ := newTestIndex(t)

	files, err := idx.ListFiles("bar/", "")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 || files[0] != "bar/baz.go" {
		t.Errorf("expected [bar/baz.go], got %v", files)
	}
}

func TestListFilesGlob(t *testing.T) {
	idx, _ := newTestIndex(t)

	files, err := idx.ListFiles("", "*.md")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 || files[0] != "README.md" {
		t.Errorf("expected [README.md], got %v", files)
	}
}
