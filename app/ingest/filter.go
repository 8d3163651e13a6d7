package ingest

import (
	"cmp"
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/seithar/autoprompt/app/feed"
	"github.com/seithar/autoprompt/app/scoring"
	"github.com/seithar/autoprompt/app/state"
)

const (
	// SeenWindowSize bounds the dedup ledger: only the newest entries
	// by insertion order are retained, so an evicted identifier can be
	// re-ingested if a feed re-lists it later.
	SeenWindowSize = 500

	summaryMaxLength = 500
)

// EntryProvider supplies raw entries for a single source. A provider
// failure is per-source and non-fatal to the run.
type EntryProvider interface {
	Fetch(ctx context.Context, source feed.Source) ([]feed.Entry, error)
}

// Filter applies dedup, scoring and the score threshold across all
// configured sources, in order.
type Filter struct {
	provider EntryProvider
	engine   *scoring.Engine
	minScore float64
	now      func() time.Time
}

func NewFilter(provider EntryProvider, engine *scoring.Engine, minScore float64) *Filter {
	return &Filter{
		provider: provider,
		engine:   engine,
		minScore: minScore,
		now:      time.Now,
	}
}

// Run processes every source and returns the accepted items sorted by
// score descending (stable for equal scores) together with the updated
// ledger. The caller owns ledger persistence.
//
// The dedup gate is hard: an identifier already in the ledger, or added
// earlier in this same run, is skipped without scoring. Every scored
// identifier enters the ledger whether or not it passed the threshold,
// so sub-threshold items are never rescored later. A failed source
// contributes nothing to the ledger.
func (f *Filter) Run(ctx context.Context, sources []feed.Source, record state.Record) ([]Item, state.Record) {
	seen := make(map[string]struct{}, len(record.Seen))
	order := make([]string, 0, len(record.Seen))
	for _, id := range record.Seen {
		seen[id] = struct{}{}
		order = append(order, id)
	}

	var accepted []Item

	for _, source := range sources {
		entries, err := f.provider.Fetch(ctx, source)
		if err != nil {
			slog.Warn("Failed to fetch source, skipping", "source", source.Name, "error", err)
			continue
		}

		for _, entry := range entries {
			id := cmp.Or(entry.ID, entry.Link)
			if _, ok := seen[id]; ok {
				continue
			}

			score, tags := f.engine.Run(entry.Title, entry.Summary)
			if score >= f.minScore {
				accepted = append(accepted, Item{
					ID:          id,
					Title:       entry.Title,
					Summary:     truncate(entry.Summary, summaryMaxLength),
					Link:        entry.Link,
					Feed:        source.Name,
					Score:       score,
					MatchedTags: tags,
					FetchedAt:   f.now().UTC(),
				})
			}

			seen[id] = struct{}{}
			order = append(order, id)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})

	if len(order) > SeenWindowSize {
		order = order[len(order)-SeenWindowSize:]
	}

	return accepted, state.Record{Seen: order, LastRun: f.now().UTC()}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
