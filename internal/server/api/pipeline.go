package api

import (
	"encoding/json"
	"net/http"

	"github.com/ernest-danials/cookture/internal/app"
)

// PipelineHandler handles the hands-free toggle.
type PipelineHandler struct {
	pipeline Pipeline
}

// NewPipelineHandler creates a new PipelineHandler for p.
func NewPipelineHandler(p Pipeline) *PipelineHandler {
	return &PipelineHandler{pipeline: p}
}

type pipelineResponse struct {
	Enabled bool      `json:"enabled"`
	Running bool      `json:"running"`
	Stats   app.Stats `json:"stats"`
}

type updatePipelineRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT on /api/pipeline.
func (h *PipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req updatePipelineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.pipeline.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, pipelineResponse{
		Enabled: h.pipeline.Enabled(),
		Running: h.pipeline.Running(),
		Stats:   h.pipeline.Stats(),
	})
}
