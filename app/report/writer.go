package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seithar/autoprompt/app/task"
)

const markdownTopPapers = 10

// Writer persists run artifacts: the JSON record, the human-readable
// markdown rendering, and the latest task prompts.
type Writer struct {
	outputDir string
	tasksDir  string
}

func NewWriter(outputDir, tasksDir string) *Writer {
	return &Writer{outputDir: outputDir, tasksDir: tasksDir}
}

// Write stores both report renderings, named by the run timestamp.
func (w *Writer) Write(r *Report) (jsonPath, markdownPath string, err error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := r.RunAt.UTC().Format("20060102-150405")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal report: %w", err)
	}

	jsonPath = filepath.Join(w.outputDir, fmt.Sprintf("report-%s.json", timestamp))
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write report: %w", err)
	}

	markdownPath = filepath.Join(w.outputDir, fmt.Sprintf("diff-%s.md", timestamp))
	if err := os.WriteFile(markdownPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write markdown report: %w", err)
	}

	return jsonPath, markdownPath, nil
}

// WriteTasks stores the generated task prompts as tasks/latest.json,
// overwriting the previous run's set.
func (w *Writer) WriteTasks(tasks []task.Task) (string, error) {
	if err := os.MkdirAll(w.tasksDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create tasks directory: %w", err)
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tasks: %w", err)
	}

	path := filepath.Join(w.tasksDir, "latest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write tasks: %w", err)
	}

	return path, nil
}

// RenderMarkdown produces the human-readable report. Output depends
// only on the report contents, so identical runs render identically.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	timestamp := r.RunAt.UTC().Format("20060102-150405")
	fmt.Fprintf(&b, "# Autoprompt Report: %s\n\n", timestamp)
	fmt.Fprintf(&b, "**Papers scanned:** %d | **Suggestions:** %d\n\n", r.PapersFound, r.SuggestionsGenerated)

	b.WriteString("## Top Papers\n\n")
	for i, paper := range r.Papers {
		if i >= markdownTopPapers {
			break
		}
		fmt.Fprintf(&b, "- **[%g]** [%s](%s)\n", paper.Score, truncate(paper.Title, 80), paper.Link)
		fmt.Fprintf(&b, "  Keywords: %s\n\n", strings.Join(paper.MatchedKeywords, ", "))
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("## Suggested Prompt Updates\n\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "### %s -> `%s` / %s\n\n", s.Category, s.TargetFile, s.TargetSection)
			fmt.Fprintf(&b, "> %s\n\n", s.Text)
			fmt.Fprintf(&b, "Source: [%s](%s) (score: %g)\n\n", s.ItemTitle, s.ItemLink, s.ItemScore)
			b.WriteString("---\n\n")
		}
	}

	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
