package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seithar/autoprompt/app/annotate"
	"github.com/seithar/autoprompt/app/config"
	"github.com/seithar/autoprompt/app/docs"
	"github.com/seithar/autoprompt/app/ingest"
	"github.com/seithar/autoprompt/app/report"
	"github.com/seithar/autoprompt/app/state"
	"github.com/seithar/autoprompt/app/suggest"
	"github.com/seithar/autoprompt/app/task"
	"github.com/seithar/autoprompt/app/taxonomy"
)

// LedgerStore persists the dedup ledger between runs.
type LedgerStore interface {
	Load() (state.Record, error)
	Save(record state.Record) error
}

// ContentFetcher retrieves the readable full text behind an item link.
type ContentFetcher interface {
	Run(ctx context.Context, link string) (string, error)
}

// ItemAnnotator analyzes one item's title and text.
type ItemAnnotator interface {
	Run(ctx context.Context, title, summary string) *annotate.Annotation
}

// DocumentLoader supplies the parsed document corpus.
type DocumentLoader interface {
	Load() []docs.Document
}

// ArtifactWriter stores the run outputs.
type ArtifactWriter interface {
	Write(r *report.Report) (jsonPath, markdownPath string, err error)
	WriteTasks(tasks []task.Task) (string, error)
}

// TaxonomyFeeder forwards annotated items to the taxonomy service.
type TaxonomyFeeder interface {
	Run(ctx context.Context, items []ingest.Item) []taxonomy.Result
}

// Deps wires the pipeline stages together.
type Deps struct {
	Store       LedgerStore
	Filter      *ingest.Filter
	Extractor   ContentFetcher
	Annotator   ItemAnnotator
	Corpus      DocumentLoader
	Suggestions *suggest.Generator
	Tasks       *task.Generator
	Writer      ArtifactWriter
	Taxonomy    TaxonomyFeeder
}

// Pipeline executes one full run to completion: load ledger, fetch and
// score, annotate, cross-reference the corpus, write artifacts, persist
// the ledger, feed the taxonomy. The latest outputs are retained in
// memory for the API.
type Pipeline struct {
	config *config.Config
	deps   Deps

	mu              sync.RWMutex
	lastReport      *report.Report
	lastTasks       []task.Task
	lastSuggestions []suggest.Suggestion
}

func New(config *config.Config, deps Deps) *Pipeline {
	return &Pipeline{config: config, deps: deps}
}

// Run executes one pipeline run. A failed ledger read starts from an
// empty ledger; a failed ledger write keeps the previous ledger and
// does not fail the run. A run with no accepted items persists the
// ledger but writes no artifacts.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now().UTC()
	slog.Info("Pipeline run started")

	record, err := p.deps.Store.Load()
	if err != nil {
		slog.Warn("Failed to load dedup ledger, starting from empty", "error", err)
		record = state.Record{}
	}

	items, updated := p.deps.Filter.Run(ctx, p.config.Feeds, record)
	slog.Info("Scoring complete", "accepted", len(items), "ledger_size", len(updated.Seen))

	if len(items) == 0 {
		p.saveLedger(updated)
		slog.Info("No new relevant items, skipping artifacts")
		return nil
	}

	p.annotateItems(ctx, items)

	documents := p.deps.Corpus.Load()
	slog.Info("Corpus loaded", "documents", len(documents))

	suggestions := p.deps.Suggestions.Run(items, documents)
	tasks := p.deps.Tasks.Run(items)

	r := report.Build(started, items, suggestions, p.config.Output)

	jsonPath, markdownPath, err := p.deps.Writer.Write(r)
	if err != nil {
		p.saveLedger(updated)
		return fmt.Errorf("failed to write report artifacts: %w", err)
	}

	tasksPath, err := p.deps.Writer.WriteTasks(tasks)
	if err != nil {
		p.saveLedger(updated)
		return fmt.Errorf("failed to write task prompts: %w", err)
	}

	p.saveLedger(updated)

	if p.config.Taxonomy.Enabled && p.deps.Taxonomy != nil {
		results := p.deps.Taxonomy.Run(ctx, items)
		slog.Info("Taxonomy hook finished", "records", len(results))
	}

	p.mu.Lock()
	p.lastReport = r
	p.lastTasks = tasks
	p.lastSuggestions = suggestions
	p.mu.Unlock()

	slog.Info("Pipeline run finished",
		"duration", time.Since(started).Round(time.Millisecond),
		"items", len(items),
		"suggestions", len(suggestions),
		"tasks", len(tasks),
		"report", jsonPath,
		"diff", markdownPath,
		"tasks_file", tasksPath)

	return nil
}

func (p *Pipeline) saveLedger(record state.Record) {
	if err := p.deps.Store.Save(record); err != nil {
		slog.Error("Failed to persist dedup ledger, previous ledger kept", "error", err)
	}
}

// annotateItems runs content extraction and annotation per item.
// Failures degrade per item and never drop it from the run.
func (p *Pipeline) annotateItems(ctx context.Context, items []ingest.Item) {
	if !p.config.LLM.Enabled || p.deps.Annotator == nil {
		return
	}

	for i := range items {
		if p.config.LLM.ExtractContent && p.deps.Extractor != nil {
			content, err := p.deps.Extractor.Run(ctx, items[i].Link)
			if err != nil {
				slog.Warn("Failed to extract content, using feed summary",
					"link", items[i].Link, "error", err)
			} else {
				items[i].Content = content
			}
		}

		text := cmp.Or(items[i].Content, items[i].Summary)
		items[i].Annotation = p.deps.Annotator.Run(ctx, items[i].Title, text)
	}
}

// LastReport returns the most recent run's report, nil before the
// first productive run.
func (p *Pipeline) LastReport() *report.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReport
}

// LastTasks returns the most recent run's task prompts.
func (p *Pipeline) LastTasks() []task.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastTasks
}

// LastSuggestions returns the most recent run's suggestions.
func (p *Pipeline) LastSuggestions() []suggest.Suggestion {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuggestions
}
