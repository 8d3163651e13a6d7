package scoring

import (
	"strings"
)

// Profile is the interest profile items are scored against. Primary
// keywords carry the high weight, secondary the low one. A keyword
// occurring in the title multiplies its increment by TitleMultiplier.
type Profile struct {
	Primary         []string `yaml:"primary"`
	Secondary       []string `yaml:"secondary"`
	PrimaryWeight   float64  `yaml:"primary_weight"`
	SecondaryWeight float64  `yaml:"secondary_weight"`
	TitleMultiplier float64  `yaml:"title_multiplier"`
	MinScore        float64  `yaml:"min_score"`
}

// PrimaryMarker prefixes matched-keyword tags that came from the
// primary keyword list.
const PrimaryMarker = "+"

type Engine struct {
	profile Profile
}

func NewEngine(profile Profile) *Engine {
	return &Engine{profile: profile}
}

// Run scores an item's title and summary against the profile and
// returns the score together with the matched keyword tags in profile
// declaration order (primary before secondary). The title is part of
// the searched text, so the title multiplier applies exactly once per
// matched keyword. Empty text scores 0 with no tags.
func (e *Engine) Run(title, summary string) (float64, []string) {
	titleLower := strings.ToLower(title)
	text := titleLower + " " + strings.ToLower(summary)

	var score float64
	var matched []string

	for _, kw := range e.profile.Primary {
		kwLower := strings.ToLower(kw)
		if !strings.Contains(text, kwLower) {
			continue
		}

		pts := e.profile.PrimaryWeight
		if strings.Contains(titleLower, kwLower) {
			pts *= e.profile.TitleMultiplier
		}
		score += pts
		matched = append(matched, PrimaryMarker+kw)
	}

	for _, kw := range e.profile.Secondary {
		kwLower := strings.ToLower(kw)
		if !strings.Contains(text, kwLower) {
			continue
		}

		pts := e.profile.SecondaryWeight
		if strings.Contains(titleLower, kwLower) {
			pts *= e.profile.TitleMultiplier
		}
		score += pts
		matched = append(matched, kw)
	}

	return score, matched
}
