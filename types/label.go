package types

import (
	"time"

	"github.com/google/uuid"
)

// EventLabel is a user-defined tag used to group loggable events.
// Labels are flat, scoped to a single user, and may be attached to any
// number of that user's events.
type EventLabel struct {
	// ID is the unique identifier of the label.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID is the identifier of the user who owns this label.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Name is the display name of the label, unique per user and at most
	// MaxNameLength characters.
	Name string `json:"name" db:"name"`

	// CreatedAt is the timestamp at which the label was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the label.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Owner returns the ID of the user who owns the label.
func (l EventLabel) Owner() uuid.UUID {
	return l.UserID
}
