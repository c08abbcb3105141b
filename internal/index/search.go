package index

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/richinex/repowiki/internal/dsa"
)

// SearchHit is one ranked result from Search.
type SearchHit struct {
	Path      string
	Score     float64
	Snippet   string
	StartLine int
	EndLine   int
}

// Search tokenizes query on whitespace, drops empty tokens and stray quote
// characters, and combines the remaining tokens with a logical OR (each
// token individually quoted to suppress FTS5 operator metacharacters).
// Results are ranked by bm25 (lower raw score is better; the reported Score
// is the absolute value). For each hit a focus line is chosen by counting
// case-folded query-term occurrences per line — offsets are located with a
// suffix array over the case-folded content rather than a per-line scan —
// and the snippet spans [max(1,focus-5), min(lineCount,focus+15)].
//
// Snapshot-at-index semantics: results reflect content as of the last
// IndexRepository call, not the current file on disk.
func (idx *Index) Search(query string, topK int) ([]SearchHit, error) {
	if topK <= 0 {
		topK = 10
	}

	tokens := tokenizeQuery(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	matchExpr := buildMatchExpression(tokens)

	rows, err := idx.db.Query(`
		SELECT files.path, files.content, bm25(files_fts)
		FROM files_fts
		JOIN files ON files.id = files_fts.rowid
		WHERE files_fts MATCH ?
		ORDER BY bm25(files_fts)
		LIMIT ?
	`, matchExpr, topK)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var path, content string
		var rank float64
		if err := rows.Scan(&path, &content, &rank); err != nil {
			return nil, fmt.Errorf("index: search: scan row: %w", err)
		}

		focus := focusLine(content, tokens)
		lines := strings.Split(content, "\n")
		start := focus - 5
		if start < 1 {
			start = 1
		}
		end := focus + 15
		if end > len(lines) {
			end = len(lines)
		}
		if start > end {
			start, end = 1, len(lines)
		}

		hits = append(hits, SearchHit{
			Path:      path,
			Score:     math.Abs(rank),
			Snippet:   strings.Join(lines[start-1:end], "\n"),
			StartLine: start,
			EndLine:   end,
		})
	}
	return hits, rows.Err()
}

func tokenizeQuery(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `"'`)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// buildMatchExpression combines tokens with OR, each individually quoted so
// FTS5 operator characters inside a token (like `-` or `*`) are treated
// literally rather than as query syntax.
func buildMatchExpression(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		escaped := strings.ReplaceAll(t, `"`, `""`)
		quoted[i] = `"` + escaped + `"`
	}
	return strings.Join(quoted, " OR ")
}

// focusLine returns the 1-based line with the highest case-folded occurrence
// count of any query token, ties resolved earliest-first. Occurrence offsets
// are found via a suffix array over the case-folded content.
func focusLine(content string, tokens []string) int {
	lower := strings.ToLower(content)
	sa := dsa.BuildSuffixArray(lower)
	starts := lineStartOffsets(content)

	counts := make([]int, len(starts))
	for _, tok := range tokens {
		t := strings.ToLower(tok)
		if t == "" {
			continue
		}
		for _, off := range sa.Search(t) {
			counts[lineForOffset(starts, off)]++
		}
	}

	best, bestCount := 0, -1
	for i, c := range counts {
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	return best + 1
}

// lineStartOffsets returns the byte offset at which each line begins.
func lineStartOffsets(content string) []int {
	starts := []int{0}
	for i, r := range content {
		if r == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineForOffset returns the 0-based line index containing byte offset off.
func lineForOffset(starts []int, off int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > off })
	return i - 1
}
