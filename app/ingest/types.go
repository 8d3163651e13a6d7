package ingest

import (
	"time"

	"github.com/seithar/autoprompt/app/annotate"
)

// Item is a candidate that passed dedup and the score threshold.
// Score and MatchedTags are set by the scoring engine; Content and
// Annotation are optional enrichments attached later in the run.
type Item struct {
	ID          string
	Title       string
	Summary     string
	Link        string
	Feed        string
	Score       float64
	MatchedTags []string
	FetchedAt   time.Time

	Content    string
	Annotation *annotate.Annotation
}
