package sqlite

import (
	"context"
	"time"

	"focustrack/models"
	"focustrack/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RuleRepositoryImpl implements RuleRepository for SQLite
type RuleRepositoryImpl struct {
	db *sqlx.DB
}

// NewRuleRepository creates a new SQLite rule repository
func NewRuleRepository(db *sqlx.DB) ports.RuleRepository {
	return &RuleRepositoryImpl{db: db}
}

// List returns all rules ordered by priority, insertion order within ties.
func (r *RuleRepositoryImpl) List(ctx context.Context) ([]models.CategoryRule, error) {
	var rules []models.CategoryRule
	err := r.db.SelectContext(ctx, &rules, `
		SELECT id, priority, kind, pattern, project_id, created_at
		FROM category_rules
		ORDER BY priority ASC, created_at ASC
	`)
	return rules, err
}

// Insert writes a rule and assigns its identity in place.
func (r *RuleRepositoryImpl) Insert(ctx context.Context, rule *models.CategoryRule) error {
	rule.ID = uuid.New()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO category_rules (id, priority, kind, pattern, project_id, created_at)
		VALUES (:id, :priority, :kind, :pattern, :project_id, :created_at)
	`, rule)
	if err != nil {
		rule.ID = uuid.Nil
	}
	return err
}

// Delete removes a rule.
func (r *RuleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = ?`, id)
	return err
}
