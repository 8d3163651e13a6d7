package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Annotator asks a local LLM service to analyze an item. It never
// fails: a transport error or malformed response degrades to the
// Failed or RawFallback variant, so annotation can never block the
// scoring/dedup path.
type Annotator struct {
	settings   Settings
	httpClient *http.Client
}

func NewAnnotator(settings Settings) *Annotator {
	timeout := time.Duration(settings.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Annotator{
		settings:   settings,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (a *Annotator) Run(ctx context.Context, title, summary string) *Annotation {
	response, err := a.generate(ctx, buildPrompt(title, summary))
	if err != nil {
		return &Annotation{Kind: KindFailed, Error: err.Error()}
	}

	return parseResponse(response)
}

func (a *Annotator) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  a.settings.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.3,
			NumPredict:  512,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(a.settings.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return decoded.Response, nil
}

// parseResponse extracts the JSON block between the first '{' and the
// last '}' of the model output. Anything that does not decode becomes
// the raw fallback variant.
func parseResponse(response string) *Annotation {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start >= 0 && end > start {
		var annotation Annotation
		if err := json.Unmarshal([]byte(response[start:end+1]), &annotation); err == nil {
			annotation.Kind = KindStructured
			annotation.RawSummary = ""
			annotation.Error = ""
			return &annotation
		}
	}

	return &Annotation{Kind: KindRawFallback, RawSummary: response}
}

func buildPrompt(title, summary string) string {
	if title == "" {
		title = "Unknown"
	}
	if summary == "" {
		summary = "No abstract available"
	}

	return fmt.Sprintf(`You are a cognitive warfare research analyst. Analyze this paper for relevance to:
1. Adversarial vulnerabilities in human decision-making
2. Adversarial attacks on AI/LLM systems (prompt injection, jailbreaks)
3. Cognitive manipulation techniques (propaganda, persuasion, deception)
4. Defense mechanisms for both human and AI substrates

Paper title: %s
Abstract: %s

Respond in this exact JSON format:
{
  "relevance": "high|medium|low",
  "summary": "2-3 sentence summary of key findings",
  "attack_surface": "what vulnerability or attack vector this paper addresses",
  "sct_codes": ["SCT-XXX codes that map to this paper's findings"],
  "defense_implications": "how findings can improve cognitive/AI defense",
  "action_items": ["specific updates to make to tooling based on this paper"]
}

Be precise. No filler. Clinical.`, title, summary)
}
