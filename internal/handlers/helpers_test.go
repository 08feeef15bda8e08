package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

// In-memory repositories mirroring the store's semantics, shared across
// the handler tests.

type memUserRepo struct {
	users map[uuid.UUID]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]types.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

type memLabelRepo struct {
	labels map[uuid.UUID]types.EventLabel
	order  []uuid.UUID
	err    error
}

func newMemLabelRepo() *memLabelRepo {
	return &memLabelRepo{labels: make(map[uuid.UUID]types.EventLabel)}
}

func (r *memLabelRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]types.EventLabel, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []types.EventLabel{}
	for _, id := range r.order {
		if label, ok := r.labels[id]; ok && label.UserID == userID {
			out = append(out, label)
		}
	}
	return out, nil
}

func (r *memLabelRepo) Get(_ context.Context, id uuid.UUID) (types.EventLabel, error) {
	if r.err != nil {
		return types.EventLabel{}, r.err
	}
	label, ok := r.labels[id]
	if !ok {
		return types.EventLabel{}, store.ErrNotFound
	}
	return label, nil
}

func (r *memLabelRepo) Create(_ context.Context, label types.EventLabel) (types.EventLabel, error) {
	if r.err != nil {
		return types.EventLabel{}, r.err
	}
	for _, existing := range r.labels {
		if existing.UserID == label.UserID && existing.Name == label.Name {
			return types.EventLabel{}, store.ErrDuplicate
		}
	}
	r.labels[label.ID] = label
	r.order = append(r.order, label.ID)
	return label, nil
}

func (r *memLabelRepo) Update(_ context.Context, label types.EventLabel) (types.EventLabel, error) {
	if _, ok := r.labels[label.ID]; !ok {
		return types.EventLabel{}, store.ErrNotFound
	}
	r.labels[label.ID] = label
	return label, nil
}

func (r *memLabelRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.labels[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.labels, id)
	return nil
}

type memEventRepo struct {
	events map[uuid.UUID]types.LoggableEvent
	order  []uuid.UUID
	labels *memLabelRepo
	err    error
}

func newMemEventRepo(labels *memLabelRepo) *memEventRepo {
	return &memEventRepo{
		events: make(map[uuid.UUID]types.LoggableEvent),
		labels: labels,
	}
}

func (r *memEventRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]types.LoggableEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []types.LoggableEvent{}
	for _, id := range r.order {
		if event, ok := r.events[id]; ok && event.UserID == userID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memEventRepo) Get(_ context.Context, id uuid.UUID) (types.LoggableEvent, error) {
	if r.err != nil {
		return types.LoggableEvent{}, r.err
	}
	event, ok := r.events[id]
	if !ok {
		return types.LoggableEvent{}, store.ErrNotFound
	}
	return event, nil
}

func (r *memEventRepo) Create(_ context.Context, event types.LoggableEvent) (types.LoggableEvent, error) {
	if r.err != nil {
		return types.LoggableEvent{}, r.err
	}
	for _, existing := range r.events {
		if existing.UserID == event.UserID && existing.Name == event.Name {
			return types.LoggableEvent{}, store.ErrDuplicate
		}
	}
	if event.Timestamps == nil {
		event.Timestamps = []time.Time{}
	}
	if event.Labels == nil {
		event.Labels = []types.EventLabel{}
	}
	r.events[event.ID] = event
	r.order = append(r.order, event.ID)
	return event, nil
}

func (r *memEventRepo) Update(_ context.Context, event types.LoggableEvent) (types.LoggableEvent, error) {
	existing, ok := r.events[event.ID]
	if !ok {
		return types.LoggableEvent{}, store.ErrNotFound
	}
	existing.Name = event.Name
	existing.WarningThresholdInDays = event.WarningThresholdInDays
	r.events[event.ID] = existing
	return existing, nil
}

func (r *memEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) AddTimestamp(_ context.Context, eventID uuid.UUID, recordedAt time.Time) error {
	event, ok := r.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	for _, ts := range event.Timestamps {
		if ts.Equal(recordedAt) {
			return nil
		}
	}
	event.Timestamps = append(event.Timestamps, recordedAt)
	sort.Slice(event.Timestamps, func(i, j int) bool {
		return event.Timestamps[i].After(event.Timestamps[j])
	})
	r.events[eventID] = event
	return nil
}

func (r *memEventRepo) RemoveTimestamp(_ context.Context, eventID uuid.UUID, recordedAt time.Time) error {
	event, ok := r.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	for i, ts := range event.Timestamps {
		if ts.Equal(recordedAt) {
			event.Timestamps = append(event.Timestamps[:i], event.Timestamps[i+1:]...)
			r.events[eventID] = event
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memEventRepo) SetLabels(_ context.Context, eventID uuid.UUID, labelIDs []uuid.UUID) error {
	event, ok := r.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	event.Labels = []types.EventLabel{}
	for _, labelID := range labelIDs {
		if label, ok := r.labels.labels[labelID]; ok {
			event.Labels = append(event.Labels, label)
		}
	}
	r.events[eventID] = event
	return nil
}

// testEnv bundles a routed test server with its backing repositories.
type testEnv struct {
	server *httptest.Server
	users  *memUserRepo
	events *memEventRepo
	labels *memLabelRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	labels := newMemLabelRepo()
	events := newMemEventRepo(labels)

	userService := services.NewUserService(users)
	labelService := services.NewLabelService(labels)
	eventService := services.NewEventService(events, labels)

	logger := zap.NewNop()
	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret)
	})
	router.Route("/events", func(r chi.Router) {
		EventRouter(r, eventService, logger, testJWTSecret)
	})
	router.Route("/labels", func(r chi.Router) {
		LabelRouter(r, labelService, logger, testJWTSecret)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, events: events, labels: labels}
}

// newUserToken seeds a user directly in the repo and returns a bearer token
// for it.
func (e *testEnv) newUserToken(t *testing.T, email string) (types.User, string) {
	t.Helper()

	user := types.User{ID: uuid.New(), Email: email, Name: "Test User"}
	e.users.users[user.ID] = user

	token, err := issueToken(user.ID.String(), []byte(testJWTSecret), time.Hour)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeErrors(t *testing.T, body map[string]json.RawMessage) types.FieldErrors {
	t.Helper()

	var errs types.FieldErrors
	require.NoError(t, json.Unmarshal(body["errors"], &errs))
	return errs
}
