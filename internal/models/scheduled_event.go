// Package models provides data model definitions for the fieldsync core.
package models

// ScheduledEvent represents an appointment as fetched from the host
// application's record store. The core treats these records as read-only.
type ScheduledEvent struct {
	ID              string `db:"id" json:"id"`
	ScheduledDate   string `db:"scheduled_date" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime   string `db:"scheduled_time" json:"scheduled_time"` // HH:MM, empty when unscheduled
	DurationMinutes *int   `db:"duration_minutes" json:"duration_minutes,omitempty"`
	IsActive        bool   `db:"is_active" json:"is_active"`
	IsCompleted     bool   `db:"is_completed" json:"is_completed"`
}

// DefaultDurationMinutes is assumed when an event carries no explicit duration.
const DefaultDurationMinutes = 60

// Duration returns the event's duration in minutes, applying the default
// when no explicit duration is set. An explicit zero stays zero.
func (e *ScheduledEvent) Duration() int {
	if e.DurationMinutes == nil {
		return DefaultDurationMinutes
	}
	return *e.DurationMinutes
}

// HasTime reports whether the event has a wall-clock time assigned.
// Events without a time are exempt from conflict detection.
func (e *ScheduledEvent) HasTime() bool {
	return e.ScheduledTime != ""
}

// Schedulable reports whether the event participates in conflict detection.
func (e *ScheduledEvent) Schedulable() bool {
	return e.IsActive && !e.IsCompleted && e.HasTime()
}

// TableName returns the table name for ScheduledEvent.
func (ScheduledEvent) TableName() string {
	return "scheduled_events"
}
