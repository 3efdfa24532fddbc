package api

import (
	"net/http"
	"strconv"

	"github.com/ernest-danials/cookture/internal/store"
)

// DefaultHistoryLimit is the number of events returned when no limit is given.
const DefaultHistoryLimit = 50

// HistoryHandler handles HTTP requests for the fired gesture log.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type historyResponse struct {
	Events []*store.GestureEvent `json:"events"`
	Total  int                   `json:"total"`
}

// ServeHTTP handles GET and DELETE on /api/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.clear(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/history?limit=N and returns the newest events first.
// N must be positive.
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.store.History().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	total, err := h.store.History().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count history")
		return
	}

	if events == nil {
		events = []*store.GestureEvent{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Events: events, Total: total})
}

// clear handles DELETE /api/history.
func (h *HistoryHandler) clear(w http.ResponseWriter) {
	if err := h.store.History().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
