// Package httpx holds the JSON response helpers shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Error string         `json:"error"`
	Kind  string         `json:"kind"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Error maps an error's kind to a transport status and writes the envelope.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientStock:
		status = http.StatusUnprocessableEntity
	case apperr.KindPermissionDenied:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindTransient:
		status = http.StatusServiceUnavailable
	}

	resp := ErrorResponse{Error: err.Error(), Kind: string(kind)}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		resp.Meta = ae.Meta
	}
	JSON(w, status, resp)
}

// BadRequest writes a validation failure for malformed request bodies.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: string(apperr.KindValidation)})
}
