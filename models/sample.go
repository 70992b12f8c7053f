package models

import "time"

// IdleAppName is recorded when the sampling source cannot tell what is
// focused (screen locked, permission denied, no window).
const IdleAppName = "Idle"

// Sample is a point-in-time observation of the user's focus context.
// Samples are produced fresh on every sampling tick and never persisted.
type Sample struct {
	AppName     string    `json:"app_name"`
	AppID       string    `json:"app_id,omitempty"`
	WindowTitle string    `json:"window_title,omitempty"`
	URL         string    `json:"url,omitempty"`
	TakenAt     time.Time `json:"taken_at"`
}

// IdleSample returns the degraded sample used when the source fails.
func IdleSample() Sample {
	return Sample{AppName: IdleAppName, TakenAt: time.Now()}
}

// IsIdle reports whether the sample carries no usable focus context.
func (s Sample) IsIdle() bool {
	return s.AppName == "" || s.AppName == IdleAppName
}
