package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"smartdues/internal/auth"
	"smartdues/internal/core"
	"smartdues/internal/middleware/trace"
	"smartdues/internal/storage"
)

// errorBody is the JSON error shape for every non-2xx response.
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

const (
	kindValidation   = "validation_error"
	kindInvalidState = "invalid_state"
	kindNotFound     = "not_found"
	kindUnauthorized = "unauthorized"
	kindConflict     = "conflict"
	kindInternal     = "internal"
	kindBadRequest   = "bad_request"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorKind(w http.ResponseWriter, status int, kind, message string) {
	var body errorBody
	body.Error.Kind = kind
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeError maps domain errors onto the HTTP error taxonomy: validation
// failures are 422, state conflicts 409, missing resources 404.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidRepeatInterval),
		errors.Is(err, core.ErrNegativeReminderDay),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		writeErrorKind(w, http.StatusUnprocessableEntity, kindValidation, err.Error())

	case errors.Is(err, core.ErrAlreadyPaid):
		writeErrorKind(w, http.StatusConflict, kindInvalidState, err.Error())

	case errors.Is(err, storage.ErrEmailExists):
		writeErrorKind(w, http.StatusConflict, kindConflict, err.Error())

	case errors.Is(err, core.ErrBillNotFound),
		errors.Is(err, core.ErrUserNotFound):
		writeErrorKind(w, http.StatusNotFound, kindNotFound, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeErrorKind(w, http.StatusUnauthorized, kindUnauthorized, err.Error())

	default:
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", trace.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err)
		writeErrorKind(w, http.StatusInternalServerError, kindInternal, "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorKind(w, http.StatusBadRequest, kindBadRequest, message)
}
