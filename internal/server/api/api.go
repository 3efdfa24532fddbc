// Package api provides HTTP API handlers for the cookture session, settings
// and gesture history.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ernest-danials/cookture/internal/app"
)

// Pipeline is the part of the running pipeline the API can control.
type Pipeline interface {
	Enabled() bool
	SetEnabled(enabled bool)
	Running() bool
	Stats() app.Stats
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
