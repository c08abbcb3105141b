package index

import "fmt"

// createSchema creates the primary files table, the external-content FTS5
// virtual table over it, and the triggers that keep the two in sync.
//
// Adapted from the symbols/symbols_fts pattern in the wider example pack
// (content= / content_rowid= external-content table with ai/au/ad triggers)
// but keyed on the file's own rowid instead of a synthetic symbol id.
func (idx *Index) createSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL,
	last_modified_millis INTEGER NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
	path,
	content,
	content='files',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
	INSERT INTO files_fts(rowid, path, content) VALUES (new.id, new.path, new.content);
END;

CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
	INSERT INTO files_fts(files_fts, rowid, path, content) VALUES ('delete', old.id, old.path, old.content);
END;

CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
	INSERT INTO files_fts(files_fts, rowid, path, content) VALUES ('delete', old.id, old.path, old.content);
	INSERT INTO files_fts(rowid, path, content) VALUES (new.id, new.path, new.content);
END;
`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// rebuild forces FTS5 to reconcile itself against the content table; run at
// the end of IndexRepository, after the trigger-maintained upserts commit.
func (idx *Index) rebuild() error {
	_, err := idx.db.Exec(`INSERT INTO files_fts(files_fts) VALUES ('rebuild')`)
	return err
}
