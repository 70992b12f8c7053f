package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RuleKind selects which sample field a category rule inspects.
type RuleKind string

// Rule kind constants.
const (
	RuleKindApp   RuleKind = "app_name"
	RuleKindTitle RuleKind = "window_title"
	RuleKindURL   RuleKind = "url"
)

// Valid reports whether the kind is one of the known constants.
func (k RuleKind) Valid() bool {
	switch k {
	case RuleKindApp, RuleKindTitle, RuleKindURL:
		return true
	}
	return false
}

// CategoryRule is a deterministic matcher mapping one sample attribute to a
// project via case-insensitive substring containment. Lower priority values
// are evaluated first; ties break on insertion order.
type CategoryRule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Priority  int       `db:"priority" json:"priority"`
	Kind      RuleKind  `db:"kind" json:"kind"`
	Pattern   string    `db:"pattern" json:"pattern"`
	ProjectID string    `db:"project_id" json:"project_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewCategoryRule builds a rule with its pattern lowercase-normalized.
func NewCategoryRule(priority int, kind RuleKind, pattern, projectID string) CategoryRule {
	return CategoryRule{
		Priority:  priority,
		Kind:      kind,
		Pattern:   strings.ToLower(strings.TrimSpace(pattern)),
		ProjectID: projectID,
	}
}

// SameMatcher reports whether two rules are near-duplicates: same kind and
// same normalized pattern. Used to keep learning from growing the rule set
// unboundedly.
func (r CategoryRule) SameMatcher(other CategoryRule) bool {
	return r.Kind == other.Kind && strings.EqualFold(r.Pattern, other.Pattern)
}
