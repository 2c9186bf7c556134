// Package http provides the JSON API over the ledger service.
//
// This file implements the JSON response envelope and the mapping of service
// errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kharcha/internal/log"
	"kharcha/internal/services"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse pairs a payload with the sentence shown to the user.
type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, messageResponse{Message: msg, Data: data})
}

// writeError maps err to a status and writes the user message. Unexpected
// errors are logged with the request logger.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	msg := services.UserMessage(err)
	switch status {
	case http.StatusRequestEntityTooLarge:
		msg = "Request body is too large."
	case http.StatusBadRequest:
		if errors.Is(err, errBadBody) {
			msg = "Malformed request body."
		}
	}
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// StatusFor returns the HTTP status for a service error.
func StatusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case services.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, errBadBody),
		services.UserMessage(err) == services.MessageMalformed:
		return http.StatusBadRequest
	case services.UserMessage(err) == services.MessageNotFound:
		return http.StatusNotFound
	case services.UserMessage(err) == services.MessageDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
