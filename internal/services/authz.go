package services

import (
	"errors"

	"github.com/google/uuid"
)

// ErrForbidden is returned when a caller tries to act on a resource owned
// by another user.
var ErrForbidden = errors.New("forbidden")

// Owned is any resource with a single owning user.
type Owned interface {
	Owner() uuid.UUID
}

// requireOwner is the single ownership check used by every mutation path,
// so create/update/delete cannot drift apart.
func requireOwner(resource Owned, userID uuid.UUID) error {
	if resource.Owner() != userID {
		return ErrForbidden
	}
	return nil
}
