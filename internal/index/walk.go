package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/richinex/repowiki/internal/dsa"
	"github.com/richinex/repowiki/internal/logging"
)

var skipDirs = map[string]bool{
	"node_modules":  true,
	"dist":          true,
	".git":          true,
	".next":         true,
	".nuxt":         true,
	"coverage":      true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".repo-wiki":    true,
}

var eligibleExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rs": true, ".go": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".md": true, ".json": true, ".yaml": true, ".yml": true, ".toml": true,
}

// IndexCounts reports the outcome of an IndexRepository call.
type IndexCounts struct {
	Indexed int
	Skipped int
}

// IndexRepository walks the tree under the index's repository root,
// transactionally upserting every eligible file into the primary table (and,
// via triggers, the FTS5 side table), then rebuilds FTS5 and refreshes the
// in-memory path index used by ListFiles.
//
// Read errors during the walk are counted as skipped, never fatal — a single
// unreadable file must not abort indexing the rest of the tree.
func (idx *Index) IndexRepository() (IndexCounts, error) {
	var counts IndexCounts

	tx, err := idx.db.Begin()
	if err != nil {
		return counts, fmt.Errorf("index repository: begin transaction: %w", err)
	}

	upsert, err := tx.Prepare(`
		INSERT INTO files (path, content, last_modified_millis)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content = excluded.content,
			last_modified_millis = excluded.last_modified_millis
	`)
	if err != nil {
		tx.Rollback()
		return counts, fmt.Errorf("index repository: prepare upsert: %w", err)
	}
	defer upsert.Close()

	idx.paths = dsa.NewTrie[struct{}]()

	walkErr := filepath.WalkDir(idx.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logging.Debug("skipping unreadable path", map[string]any{"path": path, "error": err.Error()})
			counts.Skipped++
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != idx.root && (isHidden(name) || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !eligibleExtensions[filepath.Ext(path)] {
			return nil
		}

		rel, err := filepath.Rel(idx.root, path)
		if err != nil {
			logging.Debug("skipping path outside repository root", map[string]any{"path": path, "error": err.Error()})
			counts.Skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Debug("skipping file with unreadable info", map[string]any{"path": rel, "error": err.Error()})
			counts.Skipped++
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logging.Debug("skipping unreadable file", map[string]any{"path": rel, "error": err.Error()})
			counts.Skipped++
			return nil
		}

		rel = filepath.ToSlash(rel)
		if _, err := upsert.Exec(rel, string(content), info.ModTime().UnixMilli()); err != nil {
			logging.Debug("skipping file that failed to upsert", map[string]any{"path": rel, "error": err.Error()})
			counts.Skipped++
			return nil
		}
		idx.paths.Insert(rel, struct{}{})
		counts.Indexed++
		return nil
	})
	if walkErr != nil {
		tx.Rollback()
		return counts, fmt.Errorf("index repository: walk tree: %w", walkErr)
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("index repository: commit: %w", err)
	}
	if err := idx.rebuild(); err != nil {
		return counts, fmt.Errorf("index repository: rebuild fts: %w", err)
	}
	return counts, nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.' && name != "." && name != ".."
}
