package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/types"
	"go.uber.org/zap"
)

// LabelHandler serves event-label queries and mutations.
type LabelHandler struct {
	labelService *services.LabelService
	logger       *zap.Logger
}

// NewLabelHandler constructs a LabelHandler with the provided dependencies.
func NewLabelHandler(labelService *services.LabelService, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{labelService: labelService, logger: logger}
}

// LabelRouter registers event-label routes on the given router. All routes
// require authentication.
func LabelRouter(r chi.Router, labelService *services.LabelService, logger *zap.Logger, jwtSecret string) {
	handler := NewLabelHandler(labelService, logger)

	r.Use(RequireAuth(jwtSecret))
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Put("/{labelID}", handler.Update)
	r.Delete("/{labelID}", handler.Delete)
}

type LabelRequest struct {
	Name string `json:"name"`
}

// List returns all of the authenticated user's labels.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	labels, err := h.labelService.List(r.Context(), userID)
	if err != nil {
		writeResolverError(w, h.logger, "eventLabels", err)
		return
	}
	if labels == nil {
		labels = []types.EventLabel{}
	}
	writeResolverResult(w, "eventLabels", labels)
}

// Create defines a new label for the authenticated user.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResolverError(w, h.logger, "eventLabel", types.FieldErrors{
			types.Invalid("", "invalid request body"),
		})
		return
	}

	label, err := h.labelService.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeResolverError(w, h.logger, "eventLabel", err)
		return
	}
	writeResolverResult(w, "eventLabel", label)
}

// Update renames a label.
func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	labelID, err := parseUUIDParam(chi.URLParam(r, "labelID"))
	if err != nil {
		writeResolverError(w, h.logger, "eventLabel", types.FieldErrors{
			types.Invalid("id", "invalid label id"),
		})
		return
	}

	var req LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResolverError(w, h.logger, "eventLabel", types.FieldErrors{
			types.Invalid("", "invalid request body"),
		})
		return
	}

	label, err := h.labelService.Update(r.Context(), userID, labelID, req.Name)
	if err != nil {
		writeResolverError(w, h.logger, "eventLabel", err)
		return
	}
	writeResolverResult(w, "eventLabel", label)
}

// Delete removes a label. Events referencing it keep working, they simply
// lose the association.
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	labelID, err := parseUUIDParam(chi.URLParam(r, "labelID"))
	if err != nil {
		writeResolverError(w, h.logger, "eventLabel", types.FieldErrors{
			types.Invalid("id", "invalid label id"),
		})
		return
	}

	if err := h.labelService.Delete(r.Context(), userID, labelID); err != nil {
		writeResolverError(w, h.logger, "eventLabel", err)
		return
	}
	writeResolverResult(w, "eventLabel", nil)
}
