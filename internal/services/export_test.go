package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingObjectStore struct {
	key         string
	data        []byte
	contentType string
	err         error
}

func (s *capturingObjectStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	s.key = key
	s.data = data
	s.contentType = contentType
	return nil
}

func TestExportService_Export(t *testing.T) {
	labels := newFakeLabelRepo()
	events := newFakeEventRepo(labels)
	objects := &capturingObjectStore{}

	userID := uuid.New()
	labelService := NewLabelService(labels)
	health, err := labelService.Create(context.Background(), userID, "health")
	require.NoError(t, err)

	eventService := NewEventService(events, labels)
	_, err = eventService.Create(context.Background(), userID, EventInput{
		Name:                   "Exercise",
		WarningThresholdInDays: 7,
		LabelIDs:               []uuid.UUID{health.ID},
	})
	require.NoError(t, err)

	service := NewExportService(events, labels, objects)
	now := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	key, err := service.Export(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "exports/"+userID.String()+"/20260823T093000Z.json", key)
	assert.Equal(t, key, objects.key)
	assert.Equal(t, "application/json", objects.contentType)

	var snapshot ExportSnapshot
	require.NoError(t, json.Unmarshal(objects.data, &snapshot))
	assert.Equal(t, userID, snapshot.UserID)
	assert.Equal(t, now, snapshot.ExportedAt)
	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, "Exercise", snapshot.Events[0].Name)
	require.Len(t, snapshot.Labels, 1)
	assert.Equal(t, "health", snapshot.Labels[0].Name)
}

func TestExportService_UploadErrorPropagates(t *testing.T) {
	labels := newFakeLabelRepo()
	events := newFakeEventRepo(labels)
	uploadErr := errors.New("bucket unavailable")
	objects := &capturingObjectStore{err: uploadErr}

	service := NewExportService(events, labels, objects)

	_, err := service.Export(context.Background(), uuid.New())
	assert.ErrorIs(t, err, uploadErr)
}
