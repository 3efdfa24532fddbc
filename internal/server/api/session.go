package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ernest-danials/cookture/internal/cooking"
)

// SessionHandler handles HTTP requests for the cooking session.
type SessionHandler struct {
	session *cooking.Session
}

// NewSessionHandler creates a new SessionHandler for s.
func NewSessionHandler(s *cooking.Session) *SessionHandler {
	return &SessionHandler{session: s}
}

type actionResponse struct {
	Changed bool          `json:"changed"`
	State   cooking.State `json:"state"`
}

// ServeHTTP routes requests under /api/session.
//
//	GET  /api/session
//	POST /api/session/next
//	POST /api/session/prev
//	POST /api/session/timer/{start,stop,toggle}
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.session.Snapshot())
		return
	}

	var action func() (bool, error)
	switch path {
	case "next":
		action = h.session.Advance
	case "prev":
		action = h.session.Retreat
	case "timer/start":
		action = h.session.StartTimer
	case "timer/stop":
		action = h.session.StopTimer
	case "timer/toggle":
		action = h.session.ToggleTimer
	default:
		writeError(w, http.StatusNotFound, "Unknown session action")
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	changed, err := action()
	if err != nil {
		if errors.Is(err, cooking.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "Session closed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply action")
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Changed: changed,
		State:   h.session.Snapshot(),
	})
}
