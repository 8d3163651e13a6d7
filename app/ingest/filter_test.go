package ingest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/seithar/autoprompt/app/feed"
	"github.com/seithar/autoprompt/app/scoring"
	"github.com/seithar/autoprompt/app/state"
)

type stubProvider struct {
	entries map[string][]feed.Entry
	errs    map[string]error
}

func (p *stubProvider) Fetch(_ context.Context, source feed.Source) ([]feed.Entry, error) {
	if err := p.errs[source.Name]; err != nil {
		return nil, err
	}
	return p.entries[source.Name], nil
}

func testEngine() *scoring.Engine {
	return scoring.NewEngine(scoring.Profile{
		Primary:         []string{"jailbreak"},
		Secondary:       []string{"alignment"},
		PrimaryWeight:   10,
		SecondaryWeight: 3,
		TitleMultiplier: 2,
		MinScore:        5,
	})
}

func TestFilter_Run_AcceptsAndRanks(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {
			{ID: "1", Title: "alignment notes", Summary: "alignment"},     // 3, below threshold
			{ID: "2", Title: "Jailbreak Study", Summary: "details"},       // 20
			{ID: "3", Title: "on jailbreak", Summary: "alignment and more"}, // 23
		},
	}}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, record := filter.Run(context.Background(), []feed.Source{{Name: "arxiv"}}, state.Record{})

	if len(accepted) != 2 {
		t.Fatalf("Expected 2 accepted items, got %d", len(accepted))
	}
	if accepted[0].ID != "3" || accepted[1].ID != "2" {
		t.Errorf("Expected score-descending order [3 2], got [%s %s]", accepted[0].ID, accepted[1].ID)
	}

	// Sub-threshold items still enter the ledger
	if !reflect.DeepEqual(record.Seen, []string{"1", "2", "3"}) {
		t.Errorf("Expected seen set [1 2 3], got %v", record.Seen)
	}
	if record.LastRun.IsZero() {
		t.Errorf("Expected last run to be stamped")
	}
}

func TestFilter_Run_IdempotentDedup(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {{ID: "1", Title: "Jailbreak Study", Summary: "details"}},
	}}
	sources := []feed.Source{{Name: "arxiv"}}
	filter := NewFilter(provider, testEngine(), 5)

	first, record := filter.Run(context.Background(), sources, state.Record{})
	if len(first) != 1 {
		t.Fatalf("Expected 1 accepted item on first run, got %d", len(first))
	}

	second, _ := filter.Run(context.Background(), sources, record)
	if len(second) != 0 {
		t.Errorf("Expected 0 accepted items on second run, got %d", len(second))
	}
}

func TestFilter_Run_SeenIdentifierSkippedWithoutInsertion(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {{ID: "X123", Title: "Jailbreak Study", Summary: "details"}},
	}}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, record := filter.Run(context.Background(), []feed.Source{{Name: "arxiv"}},
		state.Record{Seen: []string{"X123"}})

	if len(accepted) != 0 {
		t.Errorf("Expected 0 accepted items, got %d", len(accepted))
	}
	if !reflect.DeepEqual(record.Seen, []string{"X123"}) {
		t.Errorf("Expected seen set unchanged, got %v", record.Seen)
	}
}

func TestFilter_Run_InRunDuplicatesSkipped(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"a": {{ID: "1", Title: "Jailbreak Study", Summary: ""}},
		"b": {{ID: "1", Title: "Jailbreak Study", Summary: ""}},
	}}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, record := filter.Run(context.Background(),
		[]feed.Source{{Name: "a"}, {Name: "b"}}, state.Record{})

	if len(accepted) != 1 {
		t.Errorf("Expected duplicate within the run to be skipped, got %d items", len(accepted))
	}
	if !reflect.DeepEqual(record.Seen, []string{"1"}) {
		t.Errorf("Expected seen set [1], got %v", record.Seen)
	}
}

func TestFilter_Run_SourceFailureSkipsWholeSource(t *testing.T) {
	provider := &stubProvider{
		entries: map[string][]feed.Entry{
			"bad":  {{ID: "1", Title: "Jailbreak Study", Summary: ""}},
			"good": {{ID: "2", Title: "Jailbreak Study", Summary: ""}},
		},
		errs: map[string]error{"bad": errors.New("connection refused")},
	}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, record := filter.Run(context.Background(),
		[]feed.Source{{Name: "bad"}, {Name: "good"}}, state.Record{})

	if len(accepted) != 1 || accepted[0].ID != "2" {
		t.Fatalf("Expected only the good source's item, got %v", accepted)
	}
	if !reflect.DeepEqual(record.Seen, []string{"2"}) {
		t.Errorf("Failed source must not touch the ledger, got %v", record.Seen)
	}
}

func TestFilter_Run_IdentifierFallsBackToLink(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {{Link: "https://example.org/p1", Title: "Jailbreak Study", Summary: ""}},
	}}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, record := filter.Run(context.Background(), []feed.Source{{Name: "arxiv"}}, state.Record{})

	if len(accepted) != 1 || accepted[0].ID != "https://example.org/p1" {
		t.Fatalf("Expected link-derived identifier, got %v", accepted)
	}
	if !reflect.DeepEqual(record.Seen, []string{"https://example.org/p1"}) {
		t.Errorf("Expected link-derived identifier in ledger, got %v", record.Seen)
	}
}

func TestFilter_Run_StableOrderForEqualScores(t *testing.T) {
	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {
			{ID: "1", Title: "Jailbreak Study A", Summary: ""},
			{ID: "2", Title: "Jailbreak Study B", Summary: ""},
			{ID: "3", Title: "Jailbreak Study C", Summary: ""},
		},
	}}
	sources := []feed.Source{{Name: "arxiv"}}

	var orders [][]string
	for run := 0; run < 3; run++ {
		filter := NewFilter(provider, testEngine(), 5)
		accepted, _ := filter.Run(context.Background(), sources, state.Record{})

		ids := make([]string, len(accepted))
		for i, item := range accepted {
			ids[i] = item.ID
		}
		orders = append(orders, ids)
	}

	expected := []string{"1", "2", "3"}
	for run, ids := range orders {
		if !reflect.DeepEqual(ids, expected) {
			t.Errorf("Run %d: expected stable input order %v for equal scores, got %v", run, expected, ids)
		}
	}
}

func TestFilter_Run_WindowEvictionReadmitsOldIdentifier(t *testing.T) {
	// Pre-seed a full window, push one new identifier through, and
	// verify the oldest entry is evicted. A re-listed evicted
	// identifier is then re-ingested: the window gives at-most-once
	// semantics per window, not forever.
	preSeeded := make([]string, SeenWindowSize)
	for i := range preSeeded {
		preSeeded[i] = fmt.Sprintf("old-%d", i)
	}

	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {{ID: "new-1", Title: "Jailbreak Study", Summary: ""}},
	}}
	sources := []feed.Source{{Name: "arxiv"}}

	filter := NewFilter(provider, testEngine(), 5)
	_, record := filter.Run(context.Background(), sources, state.Record{Seen: preSeeded})

	if len(record.Seen) != SeenWindowSize {
		t.Fatalf("Expected ledger truncated to %d, got %d", SeenWindowSize, len(record.Seen))
	}
	if record.Contains("old-0") {
		t.Errorf("Expected oldest identifier to be evicted")
	}
	if !record.Contains("new-1") {
		t.Errorf("Expected newest identifier to be retained")
	}

	// The evicted identifier comes around again and is re-accepted.
	provider.entries["arxiv"] = []feed.Entry{{ID: "old-0", Title: "Jailbreak Study", Summary: ""}}
	accepted, _ := filter.Run(context.Background(), sources, record)
	if len(accepted) != 1 || accepted[0].ID != "old-0" {
		t.Errorf("Expected evicted identifier to be re-ingested, got %v", accepted)
	}
}

func TestFilter_Run_SummaryTruncated(t *testing.T) {
	long := make([]byte, 0, 1200)
	for i := 0; i < 1200; i++ {
		long = append(long, 'x')
	}

	provider := &stubProvider{entries: map[string][]feed.Entry{
		"arxiv": {{ID: "1", Title: "Jailbreak Study", Summary: string(long)}},
	}}

	filter := NewFilter(provider, testEngine(), 5)
	accepted, _ := filter.Run(context.Background(), []feed.Source{{Name: "arxiv"}}, state.Record{})

	if len(accepted) != 1 {
		t.Fatalf("Expected 1 accepted item, got %d", len(accepted))
	}
	if got := len(accepted[0].Summary); got != 500 {
		t.Errorf("Expected summary truncated to 500, got %d", got)
	}
}
