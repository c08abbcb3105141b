// Package index provides a persistent full-text index over a repository's
// eligible source files.
//
// Information Hiding:
// - SQLite connection management and FTS5 schema hidden behind the Index type
// - Directory-prefix lookup acceleration (radix tree) hidden behind ListFiles
// - Focus-line computation (suffix array) hidden behind Search
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/repowiki/internal/dsa"
)

// Row is one indexed file: its repository-relative path, full content, and
// last-modified time in milliseconds since epoch.
type Row struct {
	Path               string
	Content            string
	LastModifiedMillis int64
}

// Index is a persistent, file-backed full-text index over a repository root.
// Snapshot-at-index semantics: Search reads the content stored at the last
// IndexRepository call, not the file on disk at query time.
type Index struct {
	db    *sql.DB
	root  string
	paths *dsa.Trie[struct{}]
}

// DefaultRelPath is the conventional location of the index database relative
// to the repository root.
const DefaultRelPath = ".repo-wiki/index.db"

// Open opens (creating if necessary) the index database at path, rooted at
// repoRoot for containment checks performed by callers. Creates parent
// directories on demand.
func Open(repoRoot, dbPath string) (*Index, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("index: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("index: open sqlite database: %w", err)
	}

	root, err := filepath.Abs(repoRoot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("index: resolve repository root: %w", err)
	}

	idx := &Index{db: db, root: root, paths: dsa.NewTrie[struct{}]()}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: initialize schema: %w", err)
	}
	if err := idx.loadPathIndex(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: load path index: %w", err)
	}
	return idx, nil
}

// OpenInMemory opens a transient in-memory index, used by tests.
func OpenInMemory(repoRoot string) (*Index, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("index: open in-memory sqlite: %w", err)
	}
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("index: resolve repository root: %w", err)
	}
	idx := &Index{db: db, root: root, paths: dsa.NewTrie[struct{}]()}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: initialize schema: %w", err)
	}
	return idx, nil
}

// Root returns the canonical repository root this index is bound to.
func (idx *Index) Root() string {
	return idx.root
}

// Close closes the database connection. Callers must close exactly once per
// agent run.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) loadPathIndex() error {
	rows, err := idx.db.Query(`SELECT path FROM files`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return err
		}
		idx.paths.Insert(p, struct{}{})
	}
	return rows.Err()
}
