package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is the unit of tracked time: a continuously-extending record of
// the user staying in one focus context. Exactly one activity is live per
// running process; it is inserted once its duration first becomes positive
// and updated in place until the next boundary supersedes it.
type Activity struct {
	// ID is uuid.Nil while the activity only exists in memory. The
	// repository mints it on first durable write.
	ID              uuid.UUID `db:"id" json:"id"`
	StartedAt       time.Time `db:"started_at" json:"started_at"`
	DurationSeconds int64     `db:"duration_seconds" json:"duration_seconds"`
	AppName         string    `db:"app_name" json:"app_name"`
	AppID           string    `db:"app_id" json:"app_id,omitempty"`
	WindowTitle     string    `db:"window_title" json:"window_title,omitempty"`
	URL             string    `db:"url" json:"url,omitempty"`
	ProjectID       *string   `db:"project_id" json:"project_id,omitempty"`
	IsManual        bool      `db:"is_manual" json:"is_manual"`
	Note            *string   `db:"note" json:"note,omitempty"`
	// Confidence is set by automatic categorization (classifier score, or
	// 1.0 for rule matches and manual assignment). Nil when uncategorized.
	Confidence *float64  `db:"confidence" json:"confidence,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// NewActivity starts a fresh, uncategorized activity from a sample.
func NewActivity(sample Sample) *Activity {
	startedAt := sample.TakenAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return &Activity{
		StartedAt:   startedAt,
		AppName:     sample.AppName,
		AppID:       sample.AppID,
		WindowTitle: sample.WindowTitle,
		URL:         sample.URL,
	}
}

// Persisted reports whether the activity has been durably written.
func (a *Activity) Persisted() bool {
	return a.ID != uuid.Nil
}

// AssignProject applies a project assignment to the in-memory record.
// Manual assignments are authoritative and always carry confidence 1.0.
func (a *Activity) AssignProject(projectID string, confidence float64, manual bool) {
	a.ProjectID = &projectID
	a.Confidence = &confidence
	a.IsManual = manual
}

// ClearAssignment removes any project assignment, manual or automatic.
func (a *Activity) ClearAssignment() {
	a.ProjectID = nil
	a.Confidence = nil
	a.IsManual = false
	a.Note = nil
}
