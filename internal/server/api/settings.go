package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/gesture"
)

// SettingsHandler handles HTTP requests for gesture thresholds and counters.
type SettingsHandler struct {
	session *cooking.Session
}

// NewSettingsHandler creates a new SettingsHandler for s.
func NewSettingsHandler(s *cooking.Session) *SettingsHandler {
	return &SettingsHandler{session: s}
}

type settingsResponse struct {
	ProbabilityThreshold     float64          `json:"probability_threshold"`
	FistProbabilityThreshold float64          `json:"fist_probability_threshold"`
	MinThreshold             float64          `json:"min_threshold"`
	MaxThreshold             float64          `json:"max_threshold"`
	Policy                   string           `json:"policy"`
	Counters                 gesture.Counters `json:"counters"`
}

// updateSettingsRequest leaves a threshold unchanged when its field is absent.
type updateSettingsRequest struct {
	ProbabilityThreshold     *float64 `json:"probability_threshold"`
	FistProbabilityThreshold *float64 `json:"fist_probability_threshold"`
}

// ServeHTTP routes requests under /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/settings")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "reset-thresholds":
		h.post(w, r, h.session.ResetThresholds)
	case "reset-history":
		h.post(w, r, h.session.ResetCounters)
	default:
		writeError(w, http.StatusNotFound, "Unknown settings action")
	}
}

func (h *SettingsHandler) response() settingsResponse {
	st := h.session.Snapshot()
	return settingsResponse{
		ProbabilityThreshold:     st.Thresholds.Swipe,
		FistProbabilityThreshold: st.Thresholds.Fist,
		MinThreshold:             gesture.MinThreshold,
		MaxThreshold:             gesture.MaxThreshold,
		Policy:                   st.Policy,
		Counters:                 st.Counters,
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, h.response())
}

// update handles PUT /api/settings.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.session.UpdateThresholds(req.ProbabilityThreshold, req.FistProbabilityThreshold); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response())
}

func (h *SettingsHandler) post(w http.ResponseWriter, r *http.Request, fn func() error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := fn(); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response())
}

func (h *SettingsHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gesture.ErrThresholdRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cooking.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "Session closed")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to update settings")
	}
}
