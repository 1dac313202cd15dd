package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidehq/tide/internal/domain"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Validation
// and authorization failures carry their specific message; transient ones get
// a generic retryable notice.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrAuthorization):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, "RETRY", "Temporarily unavailable, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}

func isInternal(err error) bool {
	return !errors.Is(err, domain.ErrValidation) &&
		!errors.Is(err, domain.ErrAuthorization) &&
		!errors.Is(err, domain.ErrNotFound) &&
		!errors.Is(err, domain.ErrTransient)
}
