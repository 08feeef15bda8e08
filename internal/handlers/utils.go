package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/types"
	"go.uber.org/zap"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

// ErrorResponse is a simple error payload for transport-level failures
// (authentication, malformed routes). Resource mutations use the
// resolver-style payload written by writeResolverResult instead.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok {
		return uuid.Nil, errors.New("missing subject")
	}
	userID, err := uuid.Parse(strings.TrimSpace(subject))
	if err != nil {
		return uuid.Nil, errors.New("invalid subject")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeResolverResult writes a mutation/query payload in the
// result-with-errors convention: the resource under its own key plus an
// errors array that is empty on success.
func writeResolverResult(w http.ResponseWriter, key string, value any) {
	writeJSON(w, http.StatusOK, map[string]any{
		key:      value,
		"errors": []*types.FieldError{},
	})
}

// writeResolverError maps a service failure onto the same convention.
// Expected failures (validation, not found, forbidden) are data with HTTP
// 200; anything else is logged server-side and masked to a generic message
// so internals never leak to clients.
func writeResolverError(w http.ResponseWriter, logger *zap.Logger, key string, err error) {
	var fieldErrs types.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeErrorsPayload(w, http.StatusOK, key, fieldErrs)
	case errors.Is(err, store.ErrNotFound):
		writeErrorsPayload(w, http.StatusOK, key, types.FieldErrors{
			{Code: types.ErrCodeNotFound, Message: "resource not found"},
		})
	case errors.Is(err, services.ErrForbidden):
		writeErrorsPayload(w, http.StatusOK, key, types.FieldErrors{
			{Code: types.ErrCodeForbidden, Message: "you do not have permission to modify this resource"},
		})
	default:
		logger.Error("request failed", zap.Error(err))
		writeErrorsPayload(w, http.StatusInternalServerError, key, types.FieldErrors{
			{Code: types.ErrCodeInternal, Message: "Something went wrong"},
		})
	}
}

func writeErrorsPayload(w http.ResponseWriter, status int, key string, errs types.FieldErrors) {
	writeJSON(w, status, map[string]any{
		key:      nil,
		"errors": errs,
	})
}

func parseUUIDParam(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errors.New("invalid id")
	}
	return id, nil
}
