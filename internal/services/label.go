package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/types"
)

// LabelRepository defines persistence operations for event labels.
type LabelRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.EventLabel, error)
	Get(ctx context.Context, id uuid.UUID) (types.EventLabel, error)
	Create(ctx context.Context, label types.EventLabel) (types.EventLabel, error)
	Update(ctx context.Context, label types.EventLabel) (types.EventLabel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LabelService encapsulates event-label use-cases. Expected failures
// (validation, duplicate names) come back as types.FieldErrors; ownership
// violations as ErrForbidden; missing resources as store.ErrNotFound.
type LabelService struct {
	repo LabelRepository
}

func NewLabelService(repo LabelRepository) *LabelService {
	return &LabelService{repo: repo}
}

func (s *LabelService) List(ctx context.Context, userID uuid.UUID) ([]types.EventLabel, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *LabelService) Create(ctx context.Context, userID uuid.UUID, name string) (types.EventLabel, error) {
	name = strings.TrimSpace(name)
	if errs := validateName(name); len(errs) > 0 {
		return types.EventLabel{}, errs
	}

	label, err := s.repo.Create(ctx, types.EventLabel{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return types.EventLabel{}, mapDuplicateName(err)
	}
	return label, nil
}

func (s *LabelService) Update(ctx context.Context, userID, labelID uuid.UUID, name string) (types.EventLabel, error) {
	label, err := s.repo.Get(ctx, labelID)
	if err != nil {
		return types.EventLabel{}, err
	}
	if err := requireOwner(label, userID); err != nil {
		return types.EventLabel{}, err
	}

	name = strings.TrimSpace(name)
	if errs := validateName(name); len(errs) > 0 {
		return types.EventLabel{}, errs
	}

	label.Name = name
	label, err = s.repo.Update(ctx, label)
	if err != nil {
		return types.EventLabel{}, mapDuplicateName(err)
	}
	return label, nil
}

func (s *LabelService) Delete(ctx context.Context, userID, labelID uuid.UUID) error {
	label, err := s.repo.Get(ctx, labelID)
	if err != nil {
		return err
	}
	if err := requireOwner(label, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, labelID)
}

func mapDuplicateName(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return types.FieldErrors{types.Invalid("name", "name is already in use")}
	}
	return err
}
