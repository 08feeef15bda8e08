package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/types"
	"go.uber.org/zap"
)

// EventHandler serves loggable-event queries and mutations. Responses
// follow the result-with-errors convention: expected failures are data.
type EventHandler struct {
	eventService *services.EventService
	logger       *zap.Logger
}

// NewEventHandler constructs an EventHandler with the provided dependencies.
func NewEventHandler(eventService *services.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, logger: logger}
}

// EventRouter registers loggable-event routes on the given router. All
// routes require authentication.
func EventRouter(r chi.Router, eventService *services.EventService, logger *zap.Logger, jwtSecret string) {
	handler := NewEventHandler(eventService, logger)

	r.Use(RequireAuth(jwtSecret))
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Put("/{eventID}", handler.Update)
	r.Delete("/{eventID}", handler.Delete)
	r.Post("/{eventID}/timestamps", handler.AddTimestamp)
	r.Delete("/{eventID}/timestamps", handler.RemoveTimestamp)
}

type EventRequest struct {
	Name                   string   `json:"name"`
	WarningThresholdInDays int      `json:"warningThresholdInDays"`
	LabelIDs               []string `json:"labelIds"`
}

type TimestampRequest struct {
	Timestamp time.Time `json:"timestamp"`
}

// List returns all of the authenticated user's events with their
// timestamps and labels.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	events, err := h.eventService.List(r.Context(), userID)
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvents", err)
		return
	}
	if events == nil {
		events = []types.LoggableEvent{}
	}
	writeResolverResult(w, "loggableEvents", events)
}

// Create defines a new loggable event for the authenticated user.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	input, errs := decodeEventInput(r)
	if len(errs) > 0 {
		writeResolverError(w, h.logger, "loggableEvent", errs)
		return
	}

	event, err := h.eventService.Create(r.Context(), userID, input)
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", err)
		return
	}
	writeResolverResult(w, "loggableEvent", event)
}

// Update replaces an event's name, threshold and (when given) labels.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, err := parseUUIDParam(chi.URLParam(r, "eventID"))
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", types.FieldErrors{
			types.Invalid("id", "invalid event id"),
		})
		return
	}

	input, errs := decodeEventInput(r)
	if len(errs) > 0 {
		writeResolverError(w, h.logger, "loggableEvent", errs)
		return
	}

	event, err := h.eventService.Update(r.Context(), userID, eventID, input)
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", err)
		return
	}
	writeResolverResult(w, "loggableEvent", event)
}

// Delete removes an event and all of its timestamps.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, err := parseUUIDParam(chi.URLParam(r, "eventID"))
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", types.FieldErrors{
			types.Invalid("id", "invalid event id"),
		})
		return
	}

	if err := h.eventService.Delete(r.Context(), userID, eventID); err != nil {
		writeResolverError(w, h.logger, "loggableEvent", err)
		return
	}
	writeResolverResult(w, "loggableEvent", nil)
}

// AddTimestamp records an occurrence of the event and returns the updated
// event. Duplicate timestamps are ignored.
func (h *EventHandler) AddTimestamp(w http.ResponseWriter, r *http.Request) {
	h.mutateTimestamp(w, r, h.eventService.AddTimestamp)
}

// RemoveTimestamp deletes a previously recorded occurrence and returns the
// updated event.
func (h *EventHandler) RemoveTimestamp(w http.ResponseWriter, r *http.Request) {
	h.mutateTimestamp(w, r, h.eventService.RemoveTimestamp)
}

func (h *EventHandler) mutateTimestamp(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(ctx context.Context, userID, eventID uuid.UUID, recordedAt time.Time) (types.LoggableEvent, error),
) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, err := parseUUIDParam(chi.URLParam(r, "eventID"))
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", types.FieldErrors{
			types.Invalid("id", "invalid event id"),
		})
		return
	}

	var req TimestampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResolverError(w, h.logger, "loggableEvent", types.FieldErrors{
			types.Invalid("timestamp", "timestamp must be a valid RFC 3339 datetime"),
		})
		return
	}

	event, err := mutate(r.Context(), userID, eventID, req.Timestamp)
	if err != nil {
		writeResolverError(w, h.logger, "loggableEvent", err)
		return
	}
	writeResolverResult(w, "loggableEvent", event)
}

// decodeEventInput parses and shape-checks an event create/update body.
// A missing labelIds key keeps existing associations; an explicit empty
// array clears them.
func decodeEventInput(r *http.Request) (services.EventInput, types.FieldErrors) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.EventInput{}, types.FieldErrors{
			types.Invalid("", "invalid request body"),
		}
	}

	input := services.EventInput{
		Name:                   req.Name,
		WarningThresholdInDays: req.WarningThresholdInDays,
	}
	if req.LabelIDs == nil {
		return input, nil
	}

	var errs types.FieldErrors
	input.LabelIDs = make([]uuid.UUID, 0, len(req.LabelIDs))
	for _, raw := range req.LabelIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, types.Invalid("labelIds", "invalid label id: "+raw))
			continue
		}
		input.LabelIDs = append(input.LabelIDs, id)
	}
	return input, errs
}
