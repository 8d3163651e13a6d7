package rules

// Rule maps matched keyword tags to an action: a parameterized task
// prompt, a suggestion template with its target document-section
// markers, and a priority used for selection and scheduling. Rules are
// static configuration, evaluated in declaration order.
type Rule struct {
	Trigger    string   `yaml:"trigger"`
	Priority   int      `yaml:"priority"`
	Category   string   `yaml:"category"`
	TaskType   string   `yaml:"task_type"`
	Task       string   `yaml:"task"`
	Suggestion string   `yaml:"suggestion"`
	Sections   []string `yaml:"sections"`
}

// Table is the declared rule set plus the designated default rule
// returned when no trigger relates to any tag.
type Table struct {
	Rules   []Rule
	Default Rule
}
