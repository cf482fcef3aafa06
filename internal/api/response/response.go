// Package response provides helpers for sending consistent JSON responses
// from middleware, where the handler-level helpers are out of reach.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the structured error body returned by the API.
// Details is optional and carries extra context when present.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status code. A nil data
// value writes only the status. Encoding errors are logged, not returned:
// by that point the status line has already gone out.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a structured error with the given status code.
//
//	response.RespondError(w, http.StatusUnauthorized, "Authentication failed", "Missing API key")
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}
