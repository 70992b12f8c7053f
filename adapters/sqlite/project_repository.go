package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "focustrack/internal/errors"
	"focustrack/models"
	"focustrack/ports"

	"github.com/jmoiron/sqlx"
)

// ProjectRepositoryImpl implements ProjectRepository for SQLite
type ProjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new SQLite project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

// List returns projects, optionally filtered to active ones.
func (r *ProjectRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]models.Project, error) {
	query := `
		SELECT id, name, color, icon, is_active, created_at, updated_at
		FROM projects
	`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"

	var projects []models.Project
	err := r.db.SelectContext(ctx, &projects, query)
	return projects, err
}

// Get retrieves a project by its identifier.
func (r *ProjectRepositoryImpl) Get(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.GetContext(ctx, &project, `
		SELECT id, name, color, icon, is_active, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Save inserts or updates a project by its stable identifier.
func (r *ProjectRepositoryImpl) Save(ctx context.Context, project *models.Project) error {
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO projects (id, name, color, icon, is_active, created_at, updated_at)
		VALUES (:id, :name, :color, :icon, :is_active, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			icon = excluded.icon,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`, project)
	return err
}

// Deactivate soft-deletes a project, keeping activity references.
func (r *ProjectRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET is_active = 0, updated_at = ? WHERE id = ?
	`, time.Now(), id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NotFound("project")
	}
	return nil
}

// Delete hard-deletes a project. Activity references are nulled out and
// rules targeting the project dropped inside one transaction so history
// never points at a missing project.
func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE activities SET project_id = NULL WHERE project_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM category_rules WHERE project_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}
