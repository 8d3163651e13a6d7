package rules

import (
	"strings"

	"github.com/seithar/autoprompt/app/scoring"
)

// Matches reports whether a rule trigger relates to a matched-keyword
// tag. The containment test is case-insensitive and bidirectional: a
// tag may carry a multi-word phrase while the trigger is a single term,
// or the other way around. The primary marker on tags is ignored.
func Matches(trigger, tag string) bool {
	trigger = strings.ToLower(trigger)
	tag = strings.ToLower(strings.TrimPrefix(tag, scoring.PrimaryMarker))

	if trigger == "" || tag == "" {
		return false
	}

	return strings.Contains(tag, trigger) || strings.Contains(trigger, tag)
}

// Match returns the single rule to act on for an item's matched tags:
// among all rules related to any tag, the one with the strictly highest
// priority; the first-declared rule wins ties. Returns the default rule
// when nothing matches. Task and suggestion consumers share this
// selection so template choice and categorization stay consistent.
func (t Table) Match(tags []string) Rule {
	best := t.Default
	bestPriority := 0
	found := false

	for _, rule := range t.Rules {
		for _, tag := range tags {
			if !Matches(rule.Trigger, tag) {
				continue
			}
			if !found || rule.Priority > bestPriority {
				best = rule
				bestPriority = rule.Priority
				found = true
			}
			break
		}
	}

	return best
}

// MatchAll returns every rule related to the tag, in declaration order.
// Used for suggestion coverage, where all matching topics are relevant
// rather than only the highest-priority one.
func (t Table) MatchAll(tag string) []Rule {
	var matched []Rule
	for _, rule := range t.Rules {
		if Matches(rule.Trigger, tag) {
			matched = append(matched, rule)
		}
	}
	return matched
}
