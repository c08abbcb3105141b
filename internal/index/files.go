package index

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ListFiles returns indexed paths whose stored path begins with
// directoryPrefix. The candidate set is produced via the in-memory
// radix-tree path index; a supplied glob (`*`→SQL `%`, which matches any
// run of characters including `/`; `?`→`_`) is then matched against each
// whole candidate path as a trailing filter over that candidate set.
func (idx *Index) ListFiles(directoryPrefix, globPattern string) ([]string, error) {
	candidates := idx.paths.StartsWith(directoryPrefix)
	sort.Strings(candidates)

	if globPattern == "" {
		return candidates, nil
	}

	like := sqlLikePattern(globPattern)
	var matched []string
	for _, p := range candidates {
		if matchesSQLLike(p, like) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// ReadFile returns the indexed row for path, if present.
func (idx *Index) ReadFile(path string) (Row, bool, error) {
	var row Row
	err := idx.db.QueryRow(
		`SELECT path, content, last_modified_millis FROM files WHERE path = ?`, path,
	).Scan(&row.Path, &row.Content, &row.LastModifiedMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("index: read file %q: %w", path, err)
	}
	return row, true, nil
}

// sqlLikePattern translates a shell-style glob (`*`, `?`) into a SQL LIKE
// pattern (`%`, `_`); other characters pass through unchanged.
func sqlLikePattern(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchesSQLLike is a small in-process LIKE matcher (`%` any run, `_` any one
// character, case-sensitive) so ListFiles can filter the radix-tree candidate
// set without a second SQL round-trip.
func matchesSQLLike(s, pattern string) bool {
	return likeMatch(s, pattern)
}

func likeMatch(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '%':
		if likeMatch(s, pattern[1:]) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if likeMatch(s[i+1:], pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatch(s[1:], pattern[1:])
	default:
		if len(s) == 0 || s[0] != pattern[0] {
			return false
		}
		return likeMatch(s[1:], pattern[1:])
	}
}
