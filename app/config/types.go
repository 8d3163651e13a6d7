package config

import (
	"github.com/seithar/autoprompt/app/annotate"
	"github.com/seithar/autoprompt/app/docs"
	"github.com/seithar/autoprompt/app/feed"
	"github.com/seithar/autoprompt/app/report"
	"github.com/seithar/autoprompt/app/rules"
	"github.com/seithar/autoprompt/app/scoring"
	"github.com/seithar/autoprompt/app/task"
	"github.com/seithar/autoprompt/app/taxonomy"
)

// Config is the pipeline configuration, loaded once per process.
type Config struct {
	Profile     scoring.Profile   `yaml:"profile"`
	Feeds       []feed.Source     `yaml:"feeds"`
	Rules       []rules.Rule      `yaml:"rules"`
	DefaultRule rules.Rule        `yaml:"default_rule"`
	Tasks       task.Settings     `yaml:"tasks"`
	Documents   docs.Settings     `yaml:"documents"`
	LLM         annotate.Settings `yaml:"llm"`
	Taxonomy    taxonomy.Settings `yaml:"taxonomy"`
	Output      report.Settings   `yaml:"output"`
}

// RuleTable assembles the declared rules and the default rule.
func (c *Config) RuleTable() rules.Table {
	return rules.Table{Rules: c.Rules, Default: c.DefaultRule}
}
