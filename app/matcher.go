package app

import (
	"sort"
	"strings"

	"focustrack/models"
)

// MatchRules evaluates rules against one sample's fields and returns the
// first structural match, or nil. Rules are evaluated in ascending priority
// order, insertion order within ties; the first match short-circuits the
// rest.
func MatchRules(rules []models.CategoryRule, appName, windowTitle, url string) *models.CategoryRule {
	for i := range rules {
		if ruleMatches(rules[i], appName, windowTitle, url) {
			return &rules[i]
		}
	}
	return nil
}

// ruleMatches checks a single rule. A rule targeting a field absent from
// the sample never matches.
func ruleMatches(rule models.CategoryRule, appName, windowTitle, url string) bool {
	var field string
	switch rule.Kind {
	case models.RuleKindApp:
		field = appName
	case models.RuleKindTitle:
		field = windowTitle
	case models.RuleKindURL:
		field = url
	default:
		return false
	}
	if field == "" || rule.Pattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(rule.Pattern))
}

// sortRules orders rules by priority ascending, preserving insertion order
// within equal priorities.
func sortRules(rules []models.CategoryRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
}
