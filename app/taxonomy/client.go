package taxonomy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Settings configures the external taxonomy-evolution service.
type Settings struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	MinSources int    `yaml:"min_sources"`
	Timeout    int    `yaml:"timeout"` // seconds
}

// Actions reported by the service, passed through verbatim.
const (
	ActionCreatedCandidate = "created_candidate"
	ActionEvidenceAdded    = "evidence_added"
)

// Result of proposing one technique candidate.
type Result struct {
	Action        string `json:"action"`
	CodeID        string `json:"code_id"`
	Name          string `json:"name,omitempty"`
	TotalEvidence int    `json:"total_evidence,omitempty"`
}

// Promotion is a candidate that accumulated enough distinct sources.
type Promotion struct {
	CodeID  string `json:"code_id"`
	Sources int    `json:"sources"`
}

// Client talks to the taxonomy service. The service accumulates
// evidence for candidate technique classifications and promotes them
// once enough distinct sources describe the same technique.
type Client struct {
	settings   Settings
	httpClient *http.Client
}

func NewClient(settings Settings) *Client {
	timeout := time.Duration(settings.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		settings:   settings,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type proposeRequest struct {
	Description string `json:"description"`
	Source      string `json:"source"`
	Evidence    string `json:"evidence"`
}

func (c *Client) ProposeCandidate(ctx context.Context, description, source, evidence string) (Result, error) {
	var result Result
	err := c.post(ctx, "/candidates", proposeRequest{
		Description: description,
		Source:      source,
		Evidence:    evidence,
	}, &result)
	if err != nil {
		return Result{}, fmt.Errorf("failed to propose candidate: %w", err)
	}

	return result, nil
}

type promoteRequest struct {
	MinSources int `json:"min_sources"`
}

func (c *Client) PromoteCandidates(ctx context.Context, minSources int) ([]Promotion, error) {
	var promoted []Promotion
	err := c.post(ctx, "/promote", promoteRequest{MinSources: minSources}, &promoted)
	if err != nil {
		return nil, fmt.Errorf("failed to promote candidates: %w", err)
	}

	return promoted, nil
}

func (c *Client) post(ctx context.Context, path string, request, response any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.settings.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
