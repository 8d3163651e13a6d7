package annotate

// Settings configures the local LLM annotation collaborator.
type Settings struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Timeout        int    `yaml:"timeout"` // seconds
	ExtractContent bool   `yaml:"extract_content"`
}

// Kind discriminates the three annotation outcomes. Consumers switch on
// it instead of probing field presence.
type Kind string

const (
	KindStructured  Kind = "structured"
	KindRawFallback Kind = "raw_fallback"
	KindFailed      Kind = "failed"
)

// Annotation is the tagged result of an annotation call. Structured
// fields are set only for KindStructured, RawSummary only for
// KindRawFallback, Error only for KindFailed.
type Annotation struct {
	Kind Kind `json:"kind"`

	Relevance           string   `json:"relevance,omitempty"`
	Summary             string   `json:"summary,omitempty"`
	AttackSurface       string   `json:"attack_surface,omitempty"`
	SCTCodes            []string `json:"sct_codes,omitempty"`
	DefenseImplications string   `json:"defense_implications,omitempty"`
	ActionItems         []string `json:"action_items,omitempty"`

	RawSummary string `json:"raw_summary,omitempty"`

	Error string `json:"error,omitempty"`
}
