package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteJSON encodes payload with the given status. Encoding failures are
// logged only, the status line has already been sent.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil && log != nil {
		log.Error("failed to encode response", "status", statusCode, "error", err)
	}
}

// WriteError writes the standard error body. A nil errors slice is rendered
// as an empty array so clients can always iterate it.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	if errors == nil {
		errors = []string{}
	}
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Errors: errors}, log)
}
