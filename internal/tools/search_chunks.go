package tools

import (
	"context"
	"fmt"
	"strings"
)

// SearchChunksDescriptor wraps index.Search. Grounded on the bullet-list
// outputSummary shape of the teacher's ripgrep tool, backed by the
// persistent full-text index instead of shelling out to rg.
func SearchChunksDescriptor() Descriptor {
	return Descriptor{
		Name:        "search_chunks",
		Description: "Full-text search across indexed repository files. Returns ranked path:line-range hits with snippets.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":      "string",
					"minLength": 1,
					"description": "Search terms, combined with logical OR.",
				},
				"topK": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"maximum":     50,
					"default":     10,
					"description": "Maximum number of hits to return.",
				},
			},
			"required": []any{"query"},
		},
		Handler: searchChunksHandler,
	}
}

func searchChunksHandler(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult {
	query := argString(args, "query", "")
	topK := argInt(args, "topK", 10)

	hits, err := tc.Index.Search(query, topK)
	if err != nil {
		return Fail("search_chunks: %v", err)
	}

	if len(hits) == 0 {
		return Ok(hits, fmt.Sprintf("No results for query %q.", query))
	}

	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "[%d] %s:%d-%d (score: %.3f)\n", i+1, h.Path, h.StartLine, h.EndLine, h.Score)
	}
	return Ok(hits, strings.TrimRight(b.String(), "\n"))
}
