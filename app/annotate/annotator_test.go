package annotate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseResponse_Structured(t *testing.T) {
	response := `Here is the analysis:
{"relevance": "high", "summary": "Key findings.", "attack_surface": "prompt injection",
 "sct_codes": ["SCT-001"], "defense_implications": "harden input handling",
 "action_items": ["update filter list"]}
Done.`

	annotation := parseResponse(response)

	if annotation.Kind != KindStructured {
		t.Fatalf("Expected structured annotation, got %s", annotation.Kind)
	}
	if annotation.Relevance != "high" {
		t.Errorf("Expected relevance high, got %q", annotation.Relevance)
	}
	if !reflect.DeepEqual(annotation.SCTCodes, []string{"SCT-001"}) {
		t.Errorf("Expected sct_codes [SCT-001], got %v", annotation.SCTCodes)
	}
	if !reflect.DeepEqual(annotation.ActionItems, []string{"update filter list"}) {
		t.Errorf("Expected action_items, got %v", annotation.ActionItems)
	}
}

func TestParseResponse_MalformedFallsBackToRaw(t *testing.T) {
	response := `The paper { is interesting but this } is not JSON`

	annotation := parseResponse(response)

	if annotation.Kind != KindRawFallback {
		t.Fatalf("Expected raw fallback, got %s", annotation.Kind)
	}
	if annotation.RawSummary != response {
		t.Errorf("Expected raw summary to carry the full response")
	}
}

func TestParseResponse_NoBracesFallsBackToRaw(t *testing.T) {
	annotation := parseResponse("plain prose, no JSON at all")

	if annotation.Kind != KindRawFallback {
		t.Errorf("Expected raw fallback, got %s", annotation.Kind)
	}
}

func TestAnnotator_Run_StructuredResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("Expected non-streaming request")
		}
		if req.Options.Temperature != 0.3 || req.Options.NumPredict != 512 {
			t.Errorf("Unexpected options: %+v", req.Options)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Response: `{"relevance": "medium", "summary": "ok"}`,
		})
	}))
	defer server.Close()

	annotator := NewAnnotator(Settings{BaseURL: server.URL, Model: "qwen2.5:7b", Timeout: 5})
	annotation := annotator.Run(context.Background(), "Some Paper", "abstract text")

	if annotation.Kind != KindStructured {
		t.Fatalf("Expected structured annotation, got %s (%s)", annotation.Kind, annotation.Error)
	}
	if annotation.Relevance != "medium" {
		t.Errorf("Expected relevance medium, got %q", annotation.Relevance)
	}
}

func TestAnnotator_Run_ServerErrorYieldsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	annotator := NewAnnotator(Settings{BaseURL: server.URL, Model: "qwen2.5:7b", Timeout: 5})
	annotation := annotator.Run(context.Background(), "Some Paper", "abstract text")

	if annotation.Kind != KindFailed {
		t.Fatalf("Expected failed annotation, got %s", annotation.Kind)
	}
	if annotation.Error == "" {
		t.Errorf("Expected error reason to be recorded")
	}
}

func TestAnnotator_Run_ProseResponseYieldsRawFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "no structure here"})
	}))
	defer server.Close()

	annotator := NewAnnotator(Settings{BaseURL: server.URL, Model: "qwen2.5:7b", Timeout: 5})
	annotation := annotator.Run(context.Background(), "Some Paper", "abstract text")

	if annotation.Kind != KindRawFallback {
		t.Fatalf("Expected raw fallback, got %s", annotation.Kind)
	}
	if annotation.RawSummary != "no structure here" {
		t.Errorf("Expected raw summary preserved, got %q", annotation.RawSummary)
	}
}
