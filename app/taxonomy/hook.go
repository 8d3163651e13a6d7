package taxonomy

import (
	"cmp"
	"context"
	"log/slog"

	"github.com/seithar/autoprompt/app/annotate"
	"github.com/seithar/autoprompt/app/ingest"
)

// Hook feeds techniques extracted from annotated items into the
// taxonomy service after a run, then triggers the promotion check.
// Per-record failures are logged and skipped; the hook never fails the
// run.
type Hook struct {
	client   *Client
	settings Settings
}

func NewHook(client *Client, settings Settings) *Hook {
	return &Hook{client: client, settings: settings}
}

// Run proposes one candidate per described technique and reports the
// service's action for each verbatim.
func (h *Hook) Run(ctx context.Context, items []ingest.Item) []Result {
	var results []Result

	for _, item := range items {
		description, evidence := techniqueFrom(item.Annotation)
		if description == "" {
			continue
		}

		source := cmp.Or(item.ID, item.Title)
		result, err := h.client.ProposeCandidate(ctx, description, source, evidence)
		if err != nil {
			slog.Warn("Failed to propose taxonomy candidate", "source", source, "error", err)
			continue
		}

		switch result.Action {
		case ActionCreatedCandidate:
			slog.Info("Taxonomy candidate created", "code", result.CodeID, "name", result.Name)
		case ActionEvidenceAdded:
			slog.Info("Taxonomy evidence added", "code", result.CodeID, "total_evidence", result.TotalEvidence)
		default:
			slog.Warn("Unknown taxonomy action", "action", result.Action, "code", result.CodeID)
		}

		results = append(results, result)
	}

	promoted, err := h.client.PromoteCandidates(ctx, h.settings.MinSources)
	if err != nil {
		slog.Warn("Failed to run taxonomy promotion check", "error", err)
		return results
	}

	for _, p := range promoted {
		slog.Info("Taxonomy candidate promoted", "code", p.CodeID, "sources", p.Sources)
	}

	return results
}

// techniqueFrom reads the technique described by a structured
// annotation: the attack surface is the technique, the summary its
// evidence. Raw and failed annotations describe nothing.
func techniqueFrom(annotation *annotate.Annotation) (description, evidence string) {
	if annotation == nil || annotation.Kind != annotate.KindStructured {
		return "", ""
	}
	return annotation.AttackSurface, annotation.Summary
}
