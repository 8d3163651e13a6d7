package report

import (
	"time"

	"github.com/seithar/autoprompt/app/annotate"
	"github.com/seithar/autoprompt/app/ingest"
	"github.com/seithar/autoprompt/app/suggest"
)

// Settings bounds the machine-readable report.
type Settings struct {
	TopPapers int `yaml:"top_papers"`
}

// Paper is the serialized form of an accepted item.
type Paper struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Summary         string               `json:"summary"`
	Link            string               `json:"link"`
	Feed            string               `json:"feed"`
	Score           float64              `json:"score"`
	MatchedKeywords []string             `json:"matched_keywords"`
	FetchedAt       time.Time            `json:"fetched_at"`
	Annotation      *annotate.Annotation `json:"llm_analysis,omitempty"`
}

// Report is the machine-readable record of one pipeline run. Given the
// same item set and rule table it is deterministic.
type Report struct {
	RunAt                time.Time            `json:"run_at"`
	PapersFound          int                  `json:"papers_found"`
	SuggestionsGenerated int                  `json:"suggestions_generated"`
	Papers               []Paper              `json:"papers"`
	Suggestions          []suggest.Suggestion `json:"suggestions"`
}

// Build assembles the report from a run's outputs, keeping the top
// papers by the already-established score order.
func Build(runAt time.Time, items []ingest.Item, suggestions []suggest.Suggestion, settings Settings) *Report {
	top := items
	if settings.TopPapers > 0 && len(top) > settings.TopPapers {
		top = top[:settings.TopPapers]
	}

	papers := make([]Paper, 0, len(top))
	for _, item := range top {
		papers = append(papers, Paper{
			ID:              item.ID,
			Title:           item.Title,
			Summary:         item.Summary,
			Link:            item.Link,
			Feed:            item.Feed,
			Score:           item.Score,
			MatchedKeywords: item.MatchedTags,
			FetchedAt:       item.FetchedAt,
			Annotation:      item.Annotation,
		})
	}

	return &Report{
		RunAt:                runAt,
		PapersFound:          len(items),
		SuggestionsGenerated: len(suggestions),
		Papers:               papers,
		Suggestions:          suggestions,
	}
}
