package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"skytycoon/internal/apperr"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Issues  []apperr.Issue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	writeJSON(w, status, errorResponse{Error: code, Message: msg, Code: status})
}

// writeError logs err and sends it to the client. This is the only place a
// failed request is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	logger := slog.With(
		"component", "api",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error_type", kind,
		"status_code", status,
		"error", err,
	)
	switch kind {
	case apperr.KindNotFound, apperr.KindValidation:
		logger.Debug("Request rejected")
	case apperr.KindConflict, apperr.KindInsufficientFunds:
		logger.Info("Request conflicts with game state")
	case apperr.KindUnauthorized, apperr.KindForbidden:
		logger.Warn("Request not authorized")
	default:
		logger.Error("Request failed")
	}

	msg := err.Error()
	if kind == apperr.KindInternal {
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{
		Error:   string(kind),
		Message: msg,
		Code:    status,
		Issues:  apperr.IssuesOf(err),
	})
}

// pathID reads a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid "+name, []apperr.Issue{{Field: name, Message: "must be a positive integer"}})
	}
	return id, nil
}
