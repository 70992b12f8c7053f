package migration

import (
	"context"

	"focustrack/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createProjectsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create projects table")
	}
	if err := r.createActivitiesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create activities table")
	}
	if err := r.createCategoryRulesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create category_rules table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createProjectsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#3B82F6',
			icon TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *MigrationRunner) createActivitiesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			app_name TEXT NOT NULL,
			app_id TEXT NOT NULL DEFAULT '',
			window_title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			project_id TEXT REFERENCES projects(id) ON DELETE SET NULL,
			is_manual BOOLEAN NOT NULL DEFAULT 0,
			note TEXT,
			confidence REAL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *MigrationRunner) createCategoryRulesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS category_rules (
			id TEXT PRIMARY KEY,
			priority INTEGER NOT NULL,
			kind TEXT NOT NULL,
			pattern TEXT NOT NULL,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_activities_started_at ON activities(started_at)",
		"CREATE INDEX IF NOT EXISTS idx_activities_project_id ON activities(project_id)",
		"CREATE INDEX IF NOT EXISTS idx_rules_priority ON category_rules(priority, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_projects_active ON projects(is_active)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}
	return nil
}
