package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/types"
)

// EventRepository defines persistence operations for loggable events.
type EventRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.LoggableEvent, error)
	Get(ctx context.Context, id uuid.UUID) (types.LoggableEvent, error)
	Create(ctx context.Context, event types.LoggableEvent) (types.LoggableEvent, error)
	Update(ctx context.Context, event types.LoggableEvent) (types.LoggableEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddTimestamp(ctx context.Context, eventID uuid.UUID, recordedAt time.Time) error
	RemoveTimestamp(ctx context.Context, eventID uuid.UUID, recordedAt time.Time) error
	SetLabels(ctx context.Context, eventID uuid.UUID, labelIDs []uuid.UUID) error
}

// EventInput is the payload of a create/update event mutation. A nil
// LabelIDs leaves the event's label associations untouched; a non-nil
// (possibly empty) slice replaces them.
type EventInput struct {
	Name                   string
	WarningThresholdInDays int
	LabelIDs               []uuid.UUID
}

// EventService encapsulates loggable-event use-cases. Expected failures
// (validation, duplicate names, cross-user labels) come back as
// types.FieldErrors; ownership violations as ErrForbidden; missing
// resources as store.ErrNotFound.
type EventService struct {
	repo   EventRepository
	labels LabelRepository
}

func NewEventService(repo EventRepository, labels LabelRepository) *EventService {
	return &EventService{repo: repo, labels: labels}
}

func (s *EventService) List(ctx context.Context, userID uuid.UUID) ([]types.LoggableEvent, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *EventService) Create(ctx context.Context, userID uuid.UUID, input EventInput) (types.LoggableEvent, error) {
	input.Name = strings.TrimSpace(input.Name)
	errs, err := s.validate(ctx, userID, input)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if len(errs) > 0 {
		return types.LoggableEvent{}, errs
	}

	event, err := s.repo.Create(ctx, types.LoggableEvent{
		ID:                     uuid.New(),
		UserID:                 userID,
		Name:                   input.Name,
		WarningThresholdInDays: input.WarningThresholdInDays,
	})
	if err != nil {
		return types.LoggableEvent{}, mapDuplicateName(err)
	}

	if len(input.LabelIDs) > 0 {
		if err := s.repo.SetLabels(ctx, event.ID, input.LabelIDs); err != nil {
			return types.LoggableEvent{}, err
		}
		return s.repo.Get(ctx, event.ID)
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, userID, eventID uuid.UUID, input EventInput) (types.LoggableEvent, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if err := requireOwner(event, userID); err != nil {
		return types.LoggableEvent{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	errs, err := s.validate(ctx, userID, input)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if len(errs) > 0 {
		return types.LoggableEvent{}, errs
	}

	event.Name = input.Name
	event.WarningThresholdInDays = input.WarningThresholdInDays
	if _, err := s.repo.Update(ctx, event); err != nil {
		return types.LoggableEvent{}, mapDuplicateName(err)
	}

	if input.LabelIDs != nil {
		if err := s.repo.SetLabels(ctx, eventID, input.LabelIDs); err != nil {
			return types.LoggableEvent{}, err
		}
	}
	return s.repo.Get(ctx, eventID)
}

func (s *EventService) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err := requireOwner(event, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, eventID)
}

// AddTimestamp records an occurrence of the event. Duplicates are ignored
// and the stored list stays sorted newest-first.
func (s *EventService) AddTimestamp(ctx context.Context, userID, eventID uuid.UUID, recordedAt time.Time) (types.LoggableEvent, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if err := requireOwner(event, userID); err != nil {
		return types.LoggableEvent{}, err
	}

	if recordedAt.IsZero() {
		return types.LoggableEvent{}, types.FieldErrors{types.Invalid("timestamp", "timestamp is required")}
	}
	if err := s.repo.AddTimestamp(ctx, eventID, recordedAt); err != nil {
		return types.LoggableEvent{}, err
	}
	return s.repo.Get(ctx, eventID)
}

func (s *EventService) RemoveTimestamp(ctx context.Context, userID, eventID uuid.UUID, recordedAt time.Time) (types.LoggableEvent, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return types.LoggableEvent{}, err
	}
	if err := requireOwner(event, userID); err != nil {
		return types.LoggableEvent{}, err
	}

	if err := s.repo.RemoveTimestamp(ctx, eventID, recordedAt); err != nil {
		return types.LoggableEvent{}, err
	}
	return s.repo.Get(ctx, eventID)
}

// validate checks the input shape and, when labels are supplied, that every
// referenced label exists and is owned by the same user as the event.
// The error return carries store failures only.
func (s *EventService) validate(ctx context.Context, userID uuid.UUID, input EventInput) (types.FieldErrors, error) {
	errs := validateEventInput(input)
	if len(input.LabelIDs) == 0 {
		return errs, nil
	}

	owned, err := s.labels.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ownedSet := make(map[uuid.UUID]struct{}, len(owned))
	for _, label := range owned {
		ownedSet[label.ID] = struct{}{}
	}
	for _, labelID := range input.LabelIDs {
		if _, ok := ownedSet[labelID]; !ok {
			errs = append(errs, types.Invalid("labelIds", "label "+labelID.String()+" does not exist or belongs to another user"))
		}
	}
	return errs, nil
}
