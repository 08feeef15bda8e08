package types

import (
	"time"

	"github.com/google/uuid"
)

// MaxNameLength is the maximum length of event and label names.
const MaxNameLength = 25

// LoggableEvent represents a named, recurring real-world action a user
// tracks occurrences of (e.g. "Exercise", "Water plants").
type LoggableEvent struct {
	// ID is the unique identifier of the event.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID is the identifier of the user who owns this event.
	// Events are owned exclusively by one user.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Name is the display name of the event, unique per user and at most
	// MaxNameLength characters.
	Name string `json:"name" db:"name"`

	// Timestamps holds the recorded occurrences of the event. The set is
	// deduplicated and kept sorted newest-first after every mutation.
	Timestamps []time.Time `json:"timestamps"`

	// WarningThresholdInDays is the number of days of inactivity after
	// which the event is considered overdue. Zero disables the check.
	WarningThresholdInDays int `json:"warning_threshold_in_days" db:"warning_threshold_in_days"`

	// Labels are the labels attached to this event. Every label must be
	// owned by the same user as the event.
	Labels []EventLabel `json:"labels"`

	// CreatedAt is the timestamp at which the event was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the event.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Owner returns the ID of the user who owns the event.
func (e LoggableEvent) Owner() uuid.UUID {
	return e.UserID
}

// LatestTimestamp returns the most recent recorded occurrence, scanning the
// whole list rather than trusting its order. The second return value is
// false when the event has no timestamps.
func (e LoggableEvent) LatestTimestamp() (time.Time, bool) {
	if len(e.Timestamps) == 0 {
		return time.Time{}, false
	}
	latest := e.Timestamps[0]
	for _, ts := range e.Timestamps[1:] {
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest, true
}
