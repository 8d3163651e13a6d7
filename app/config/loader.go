package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the pipeline configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the YAML configuration file, applies defaults and
// validates it. Validation failures are fatal to the run: no scoring
// happens on an invalid profile or rule table.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func (l *Loader) setDefaults(config *Config) {
	if config.Profile.PrimaryWeight == 0 {
		config.Profile.PrimaryWeight = 10
	}
	if config.Profile.SecondaryWeight == 0 {
		config.Profile.SecondaryWeight = 3
	}
	if config.Profile.TitleMultiplier == 0 {
		config.Profile.TitleMultiplier = 2
	}
	if config.Profile.MinScore == 0 {
		config.Profile.MinScore = 5
	}

	if config.Tasks.MinScore == 0 {
		config.Tasks.MinScore = config.Profile.MinScore
	}
	if config.Tasks.MaxTasks == 0 {
		config.Tasks.MaxTasks = 5
	}

	if len(config.Documents.Patterns) == 0 {
		config.Documents.Patterns = []string{
			"*SOUL*.md", "*BRIEFING*.txt", "*BRIEFING*.md",
			"*prompt*.md", "*prompt*.txt", "*prompt*.yaml",
			"*AGENTS*.md", "*SYSTEM*.md",
		}
	}

	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "qwen2.5:7b"
	}
	if config.LLM.Timeout == 0 {
		config.LLM.Timeout = 120 // seconds
	}

	if config.Taxonomy.MinSources == 0 {
		config.Taxonomy.MinSources = 3
	}
	if config.Taxonomy.Timeout == 0 {
		config.Taxonomy.Timeout = 30 // seconds
	}

	if config.Output.TopPapers == 0 {
		config.Output.TopPapers = 20
	}
}

// validate validates the configuration
func (l *Loader) validate(config *Config) error {
	if len(config.Profile.Primary) == 0 {
		return fmt.Errorf("at least one primary keyword is required")
	}
	if config.Profile.TitleMultiplier < 1 {
		return fmt.Errorf("title multiplier must be >= 1")
	}
	if config.Profile.MinScore < 0 {
		return fmt.Errorf("min score must be non-negative")
	}

	if len(config.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, source := range config.Feeds {
		if source.Name == "" {
			return fmt.Errorf("feed at index %d: name is required", i)
		}
		if source.URL == "" {
			return fmt.Errorf("feed %s: URL is required", source.Name)
		}
	}

	if len(config.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}
	for i, rule := range config.Rules {
		if rule.Trigger == "" {
			return fmt.Errorf("rule at index %d: trigger is required", i)
		}
		if rule.Task == "" && rule.Suggestion == "" {
			return fmt.Errorf("rule %s: a task or suggestion template is required", rule.Trigger)
		}
		if rule.Suggestion != "" && len(rule.Sections) == 0 {
			return fmt.Errorf("rule %s: suggestion templates need target section markers", rule.Trigger)
		}
	}

	if config.DefaultRule.Task == "" {
		return fmt.Errorf("default rule task template is required")
	}

	if config.Documents.Dir == "" {
		return fmt.Errorf("documents directory is required")
	}

	return nil
}
