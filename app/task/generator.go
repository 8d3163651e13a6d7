package task

import (
	"cmp"
	"sort"
	"strings"

	"github.com/seithar/autoprompt/app/ingest"
	"github.com/seithar/autoprompt/app/rules"
)

// Settings bounds task generation per run.
type Settings struct {
	MinScore float64 `yaml:"min_score"`
	MaxTasks int     `yaml:"max_tasks"`
}

// Task is an actionable prompt rendered from a rule's template for one
// scored item. Priority and score are preserved so a downstream
// scheduler can reorder.
type Task struct {
	Type        string  `json:"type"`
	Prompt      string  `json:"prompt"`
	Priority    int     `json:"priority"`
	SourceTitle string  `json:"source_paper"`
	Score       float64 `json:"score"`
	Link        string  `json:"link"`
}

type Generator struct {
	table    rules.Table
	settings Settings
}

func NewGenerator(table rules.Table, settings Settings) *Generator {
	return &Generator{table: table, settings: settings}
}

// Run selects the top-scored items and renders one task each, using the
// highest-priority rule related to the item's tags (the default rule
// when nothing matches).
func (g *Generator) Run(items []ingest.Item) []Task {
	eligible := make([]ingest.Item, 0, len(items))
	for _, item := range items {
		if item.Score >= g.settings.MinScore {
			eligible = append(eligible, item)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	if g.settings.MaxTasks > 0 && len(eligible) > g.settings.MaxTasks {
		eligible = eligible[:g.settings.MaxTasks]
	}

	tasks := make([]Task, 0, len(eligible))
	for _, item := range eligible {
		rule := g.table.Match(item.MatchedTags)

		tasks = append(tasks, Task{
			Type:        rule.TaskType,
			Prompt:      renderTask(rule.Task, item.Title, item.Link),
			Priority:    rule.Priority,
			SourceTitle: item.Title,
			Score:       item.Score,
			Link:        item.Link,
		})
	}

	return tasks
}

// renderTask substitutes the named placeholders. An absent link renders
// as a placeholder literal so substitution never fails.
func renderTask(template, title, link string) string {
	return strings.NewReplacer(
		"{title}", title,
		"{link}", cmp.Or(link, "N/A"),
	).Replace(template)
}
