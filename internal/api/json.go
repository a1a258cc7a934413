package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jobtrail/internal/apperr"
)

const maxJSONBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON body into v and runs its validation rules.
// It writes the error response itself and reports whether to continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAttachmentMissing):
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrAttachmentMissing.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAttachmentsUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(apperr.ErrAttachmentsUnavailable.Error()))
	case errors.Is(err, apperr.ErrInvalidImport):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(apperr.ErrInvalidImport.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
