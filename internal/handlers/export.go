package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nathanchica/life-event-logger/internal/services"
	"go.uber.org/zap"
)

// ExportHandler triggers snapshot exports to object storage.
type ExportHandler struct {
	exportService *services.ExportService
	logger        *zap.Logger
}

// NewExportHandler constructs an ExportHandler with the provided dependencies.
func NewExportHandler(exportService *services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// ExportRouter registers export routes on the given router. All routes
// require authentication. Pass a nil service when object storage is not
// configured; requests then fail with 503.
func ExportRouter(r chi.Router, exportService *services.ExportService, logger *zap.Logger, jwtSecret string) {
	handler := NewExportHandler(exportService, logger)

	r.Use(RequireAuth(jwtSecret))
	r.Post("/", handler.Export)
}

type ExportResponse struct {
	ObjectKey string `json:"objectKey"`
}

// Export writes a snapshot of the user's events and labels to object
// storage and returns the object key.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.exportService == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	key, err := h.exportService.Export(r.Context(), userID)
	if err != nil {
		writeResolverError(w, h.logger, "export", err)
		return
	}
	writeResolverResult(w, "export", ExportResponse{ObjectKey: key})
}
