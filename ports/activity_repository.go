package ports

import (
	"context"
	"time"

	"focustrack/models"

	"github.com/google/uuid"
)

// ActivityRepository is the durable store for tracked activities. All
// writes are synchronous and durable on return; the segmentation engine
// relies on that for its checkpoint semantics.
type ActivityRepository interface {
	// Insert writes a new activity and assigns its identity in place.
	Insert(ctx context.Context, activity *models.Activity) error

	// UpdateDuration extends an already-persisted activity in place.
	UpdateDuration(ctx context.Context, id uuid.UUID, seconds int64) error

	// UpdateProject rewrites the assignment fields of a persisted activity.
	// A nil projectID clears the assignment.
	UpdateProject(ctx context.Context, id uuid.UUID, projectID *string, confidence *float64, manual bool, note *string) error

	// QueryRange returns activities started in [from, to), oldest first.
	QueryRange(ctx context.Context, from, to time.Time) ([]models.Activity, error)

	// TotalSecondsBetween sums persisted durations for activities started
	// in [from, to).
	TotalSecondsBetween(ctx context.Context, from, to time.Time) (int64, error)
}
