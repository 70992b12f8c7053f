package app

import (
	"time"

	"focustrack/models"
)

// EventKind identifies what changed in the tracker.
type EventKind string

// Event kind constants.
const (
	EventActivityStarted EventKind = "activity_started"
	EventActivityUpdated EventKind = "activity_updated"
	EventTodayTotal      EventKind = "today_total"
)

// Event is emitted by the tracker for presentation layers. Activity is a
// snapshot copy; mutating it has no effect on the live record.
type Event struct {
	Kind              EventKind        `json:"kind"`
	Activity          *models.Activity `json:"activity,omitempty"`
	TodayTotalSeconds int64            `json:"today_total_seconds"`
	At                time.Time        `json:"at"`
}
