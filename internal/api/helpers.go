package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSONResponse marshals v to the response writer as JSON.
// Returns false when encoding fails; the status line has already been sent by
// then, so the caller can only bail out.
func WriteJSONResponse(w http.ResponseWriter, v any) bool {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: Failed to encode response: %v", err)
		return false
	}
	return true
}

// WriteJSONError sends a JSON error body with the given status code.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	}); err != nil {
		log.Printf("API: Failed to encode error response: %v", err)
	}
}
