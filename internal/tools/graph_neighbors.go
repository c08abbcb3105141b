package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// importPatterns are grounded on the per-language regex table in
// _examples/SimplyLiz-CodeMCP/internal/modules/import_scan.go, reduced to
// the languages the repository index eligibility list covers.
var importPatterns = map[string][]*regexp.Regexp{
	".ts":  tsImportPatterns(),
	".tsx": tsImportPatterns(),
	".js":  tsImportPatterns(),
	".jsx": tsImportPatterns(),
	".py": {
		regexp.MustCompile(`from\s+([^\s]+)\s+import`),
		regexp.MustCompile(`^\s*import\s+([^\s,;]+)`),
	},
	".go": {
		regexp.MustCompile(`^\s*import\s+"([^"]+)"`),
	},
	".rs": {
		regexp.MustCompile(`^\s*use\s+([^;{]+)`),
	},
}

func tsImportPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`export\s+.*?from\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	}
}

// Neighbor is one edge reported by graph_neighbors.
type Neighbor struct {
	Type     string `json:"type"`     // "file" | "module"
	Target   string `json:"target"`
	Relation string `json:"relation,omitempty"`
	Depth    int    `json:"depth,omitempty"`
	Line     int    `json:"line"`
}

// GraphNeighborsDescriptor scans a single file's import statements. depth is
// accepted per the schema for forward compatibility but this implementation
// always treats it as 1 — see SPEC_FULL.md §11.
func GraphNeighborsDescriptor() Descriptor {
	return Descriptor{
		Name:        "graph_neighbors",
		Description: "List the direct import-graph neighbors of a repository file.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"nodeId": map[string]any{"type": "string", "minLength": 1},
				"depth": map[string]any{
					"type": "integer", "minimum": 1, "maximum": 5, "default": 1,
				},
			},
			"required": []any{"nodeId"},
		},
		Handler: graphNeighborsHandler,
	}
}

func graphNeighborsHandler(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult {
	nodeID := argString(args, "nodeId", "")

	full, ok := resolveInRepo(tc.RepoRoot, nodeID)
	if !ok {
		return Fail("graph_neighbors: path %q outside repository", nodeID)
	}

	patterns, ok := importPatterns[filepath.Ext(nodeID)]
	if !ok {
		return Ok([]Neighbor{}, fmt.Sprintf("No import scanner for %q; treating as a leaf node.", nodeID))
	}

	f, err := os.Open(full)
	if err != nil {
		return Fail("graph_neighbors: %v", err)
	}
	defer f.Close()

	var neighbors []Neighbor
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		for _, re := range patterns {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if len(m) < 2 {
					continue
				}
				raw := strings.TrimSpace(m[1])
				if raw == "" {
					continue
				}
				neighbors = append(neighbors, classifyImport(nodeID, raw, lineNum))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Fail("graph_neighbors: %v", err)
	}

	if len(neighbors) == 0 {
		return Ok(neighbors, fmt.Sprintf("%s has no detected imports.", nodeID))
	}

	var b strings.Builder
	for _, n := range neighbors {
		fmt.Fprintf(&b, "line %d: %s (%s)\n", n.Line, n.Target, n.Type)
	}
	return Ok(neighbors, strings.TrimRight(b.String(), "\n"))
}

// classifyImport resolves a relative import against the importing file and
// reports it as a file neighbor; anything else is reported as an external
// module, matching the distinction SPEC_FULL.md draws.
func classifyImport(fromPath, raw string, line int) Neighbor {
	if strings.HasPrefix(raw, ".") {
		resolved := filepath.ToSlash(filepath.Join(filepath.Dir(fromPath), raw))
		return Neighbor{Type: "file", Target: resolved, Relation: "imports", Depth: 1, Line: line}
	}
	return Neighbor{Type: "module", Target: raw, Depth: 1, Line: line}
}
