package ports

import (
	"context"

	"focustrack/models"

	"github.com/google/uuid"
)

// RuleRepository stores deterministic category rules.
type RuleRepository interface {
	// List returns all rules ordered by priority ascending, insertion
	// order within equal priorities.
	List(ctx context.Context) ([]models.CategoryRule, error)

	// Insert writes a rule and assigns its identity in place.
	Insert(ctx context.Context, rule *models.CategoryRule) error

	Delete(ctx context.Context, id uuid.UUID) error
}
