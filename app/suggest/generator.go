package suggest

import (
	"sort"
	"strings"

	"github.com/seithar/autoprompt/app/docs"
	"github.com/seithar/autoprompt/app/ingest"
	"github.com/seithar/autoprompt/app/rules"
	"github.com/seithar/autoprompt/app/scoring"
)

const (
	titleKeyLength      = 80
	titleTemplateLength = 60
)

// Suggestion proposes reviewing one section of one corpus document in
// light of one scored item. Priority is inherited from the item's
// score.
type Suggestion struct {
	ItemTitle     string  `json:"paper"`
	ItemLink      string  `json:"paper_link"`
	ItemScore     float64 `json:"paper_score"`
	Category      string  `json:"type"`
	TargetFile    string  `json:"target_file"`
	TargetSection string  `json:"target_section"`
	Text          string  `json:"suggestion"`
}

// Generator cross-references scored items against the document corpus.
// Unlike task selection, every rule related to a tag is considered:
// suggestions are about coverage across document sections, not
// single-template choice.
type Generator struct {
	table rules.Table
}

func NewGenerator(table rules.Table) *Generator {
	return &Generator{table: table}
}

// Run emits at most one suggestion per (item, rule, document) triple:
// the first section whose header contains one of the rule's markers
// wins and scanning stops for that document. Results are deduplicated
// on (item title prefix, document basename, category), first occurrence
// wins, then ordered by item score descending (stable).
func (g *Generator) Run(items []ingest.Item, documents []docs.Document) []Suggestion {
	var suggestions []Suggestion

	for _, item := range items {
		for _, tag := range item.MatchedTags {
			keyword := strings.TrimPrefix(tag, scoring.PrimaryMarker)

			for _, rule := range g.table.MatchAll(tag) {
				for _, document := range documents {
					for _, section := range document.Sections {
						if !headerMatches(section.Header, rule.Sections) {
							continue
						}

						suggestions = append(suggestions, Suggestion{
							ItemTitle:     truncate(item.Title, titleKeyLength),
							ItemLink:      item.Link,
							ItemScore:     item.Score,
							Category:      rule.Category,
							TargetFile:    document.Basename(),
							TargetSection: section.Header,
							Text:          renderSuggestion(rule.Suggestion, item.Title, keyword, section.Header),
						})
						break
					}
				}
			}
		}
	}

	suggestions = dedupe(suggestions)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].ItemScore > suggestions[j].ItemScore
	})

	return suggestions
}

// headerMatches is a flat test: a sub-header never inherits eligibility
// from an ancestor heading.
func headerMatches(header string, markers []string) bool {
	headerUpper := strings.ToUpper(header)
	for _, marker := range markers {
		if strings.Contains(headerUpper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}

func dedupe(suggestions []Suggestion) []Suggestion {
	type key struct {
		title    string
		file     string
		category string
	}

	seen := make(map[key]struct{}, len(suggestions))
	unique := make([]Suggestion, 0, len(suggestions))

	for _, s := range suggestions {
		k := key{title: s.ItemTitle, file: s.TargetFile, category: s.Category}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, s)
	}

	return unique
}

func renderSuggestion(template, title, keyword, section string) string {
	return strings.NewReplacer(
		"{title}", truncate(title, titleTemplateLength),
		"{kw}", keyword,
		"{section}", section,
	).Replace(template)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
