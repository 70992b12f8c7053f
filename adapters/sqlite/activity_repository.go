package sqlite

import (
	"context"
	"time"

	"focustrack/models"
	"focustrack/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ActivityRepositoryImpl implements ActivityRepository for SQLite
type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new SQLite activity repository
func NewActivityRepository(db *sqlx.DB) ports.ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

// Insert writes a new activity and assigns its identity in place.
func (r *ActivityRepositoryImpl) Insert(ctx context.Context, activity *models.Activity) error {
	activity.ID = uuid.New()
	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO activities (
			id, started_at, duration_seconds, app_name, app_id,
			window_title, url, project_id, is_manual, note, confidence,
			created_at, updated_at
		) VALUES (
			:id, :started_at, :duration_seconds, :app_name, :app_id,
			:window_title, :url, :project_id, :is_manual, :note, :confidence,
			:created_at, :updated_at
		)
	`, activity)
	if err != nil {
		activity.ID = uuid.Nil
	}
	return err
}

// UpdateDuration extends a persisted activity in place.
func (r *ActivityRepositoryImpl) UpdateDuration(ctx context.Context, id uuid.UUID, seconds int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET duration_seconds = ?, updated_at = ?
		WHERE id = ?
	`, seconds, time.Now(), id)
	return err
}

// UpdateProject rewrites the assignment fields of a persisted activity.
func (r *ActivityRepositoryImpl) UpdateProject(ctx context.Context, id uuid.UUID, projectID *string, confidence *float64, manual bool, note *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET project_id = ?, confidence = ?, is_manual = ?, note = ?, updated_at = ?
		WHERE id = ?
	`, projectID, confidence, manual, note, time.Now(), id)
	return err
}

// QueryRange returns activities started in [from, to), oldest first.
func (r *ActivityRepositoryImpl) QueryRange(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities, `
		SELECT id, started_at, duration_seconds, app_name, app_id,
		       window_title, url, project_id, is_manual, note, confidence,
		       created_at, updated_at
		FROM activities
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at ASC
	`, from, to)
	return activities, err
}

// TotalSecondsBetween sums persisted durations for [from, to).
func (r *ActivityRepositoryImpl) TotalSecondsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(duration_seconds), 0)
		FROM activities
		WHERE started_at >= ? AND started_at < ?
	`, from, to)
	return total, err
}
