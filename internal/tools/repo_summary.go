package tools

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var languageByExtension = map[string]string{
	".go": "Go", ".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript",
	".jsx": "JavaScript", ".py": "Python", ".rs": "Rust", ".java": "Java",
	".c": "C", ".cpp": "C++", ".h": "C", ".hpp": "C++", ".md": "Markdown",
	".json": "JSON", ".yaml": "YAML", ".yml": "YAML", ".toml": "TOML",
}

// RepoSummary is the structured result of get_repo_summary.
type RepoSummary struct {
	Name           string         `json:"name"`
	TotalFiles     int            `json:"totalFiles"`
	TotalLines     int            `json:"totalLines"`
	Languages      map[string]int `json:"languages"`
	TopDirectories []string       `json:"topDirectories"`
}

// GetRepoSummaryDescriptor walks the repository tree once, counting files
// per detected language and top-level directories.
func GetRepoSummaryDescriptor() Descriptor {
	return Descriptor{
		Name:        "get_repo_summary",
		Description: "Summarize the repository: file/line counts per language and top-level directories.",
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: getRepoSummaryHandler,
	}
}

func getRepoSummaryHandler(ctx context.Context, args map[string]any, tc *ToolContext) ToolResult {
	root, err := filepath.Abs(tc.RepoRoot)
	if err != nil {
		return Fail("get_repo_summary: %v", err)
	}

	summary := RepoSummary{Name: filepath.Base(root), Languages: map[string]int{}}
	topDirs := map[string]bool{}

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." && !strings.Contains(rel, string(filepath.Separator)) {
				topDirs[rel] = true
			}
			return nil
		}

		lang, known := languageByExtension[filepath.Ext(path)]
		if !known {
			return nil
		}

		summary.TotalFiles++
		summary.Languages[lang]++
		if n, err := countLines(path); err == nil {
			summary.TotalLines += n
		}
		return nil
	})
	if walkErr != nil {
		return Fail("get_repo_summary: %v", walkErr)
	}

	dirs := make([]string, 0, len(topDirs))
	for d := range topDirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	if len(dirs) > 10 {
		dirs = dirs[:10]
	}
	summary.TopDirectories = dirs

	langs := make([]string, 0, len(summary.Languages))
	for l := range summary.Languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	var b strings.Builder
	b.WriteString(summary.Name + ": ")
	for i, l := range langs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l)
	}
	return Ok(summary, b.String())
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}
