package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/types"
)

// ObjectStore is the slice of object storage the export service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// ExportSnapshot is the JSON document written to object storage by an export.
type ExportSnapshot struct {
	UserID     uuid.UUID             `json:"user_id"`
	ExportedAt time.Time             `json:"exported_at"`
	Events     []types.LoggableEvent `json:"events"`
	Labels     []types.EventLabel    `json:"labels"`
}

// ExportService writes a snapshot of a user's events and labels to object
// storage so users can keep offline backups of their log.
type ExportService struct {
	events  EventRepository
	labels  LabelRepository
	objects ObjectStore
	now     func() time.Time
}

func NewExportService(events EventRepository, labels LabelRepository, objects ObjectStore) *ExportService {
	return &ExportService{
		events:  events,
		labels:  labels,
		objects: objects,
		now:     time.Now,
	}
}

// Export snapshots the user's data and returns the object key it was
// written under.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) (string, error) {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to list events: %w", err)
	}
	labels, err := s.labels.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}

	now := s.now().UTC()
	snapshot := ExportSnapshot{
		UserID:     userID,
		ExportedAt: now,
		Events:     events,
		Labels:     labels,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, now.Format("20060102T150405Z"))
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return key, nil
}
