package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ernest-danials/cookture/internal/cooking"
)

func TestSessionHandler_Get(t *testing.T) {
	handler := NewSessionHandler(newTestSession(t))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var st cooking.State
	decode(t, rec, &st)
	if st.StepIndex != 0 || st.StepCount != 3 {
		t.Errorf("expected step 0 of 3, got %d of %d", st.StepIndex, st.StepCount)
	}
	if st.Recipe != "test recipe" {
		t.Errorf("expected recipe name, got %q", st.Recipe)
	}
	if st.Timer.Phase != cooking.Idle {
		t.Errorf("expected idle timer, got %v", st.Timer.Phase)
	}
}

func TestSessionHandler_Navigation(t *testing.T) {
	handler := NewSessionHandler(newTestSession(t))

	post := func(path string) actionResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
		var resp actionResponse
		decode(t, rec, &resp)
		return resp
	}

	if resp := post("/api/session/prev"); resp.Changed || resp.State.StepIndex != 0 {
		t.Errorf("prev on first step should be a no-op, got %+v", resp)
	}
	if resp := post("/api/session/next"); !resp.Changed || resp.State.StepIndex != 1 {
		t.Errorf("next should move to step 1, got changed=%v index=%d", resp.Changed, resp.State.StepIndex)
	}

	resp := post("/api/session/timer/start")
	if !resp.Changed || resp.State.Timer.Phase != cooking.Running {
		t.Fatalf("timer should be running, got %+v", resp.State.Timer)
	}
	if resp.State.Timer.Remaining == nil || *resp.State.Timer.Remaining != 120 {
		t.Errorf("expected 120 seconds remaining, got %v", resp.State.Timer.Remaining)
	}

	if resp := post("/api/session/timer/stop"); !resp.Changed || resp.State.Timer.Phase != cooking.Stopped {
		t.Errorf("timer should be stopped, got %+v", resp.State.Timer)
	}
	if resp := post("/api/session/timer/toggle"); !resp.Changed || resp.State.Timer.Phase != cooking.Running {
		t.Errorf("toggle should restart the timer, got %+v", resp.State.Timer)
	}

	resp = post("/api/session/next")
	if resp.State.StepIndex != 2 || resp.State.Timer.Phase != cooking.Idle {
		t.Errorf("step change should clear the timer, got index=%d timer=%+v", resp.State.StepIndex, resp.State.Timer)
	}
	if resp := post("/api/session/next"); resp.Changed {
		t.Error("next on last step should be a no-op")
	}
	if resp := post("/api/session/timer/start"); resp.Changed {
		t.Error("starting a timer on a step without one should be a no-op")
	}
}

func TestSessionHandler_Errors(t *testing.T) {
	session := newTestSession(t)
	handler := NewSessionHandler(session)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown action", http.MethodPost, "/api/session/jump", http.StatusNotFound},
		{"GET on action", http.MethodGet, "/api/session/next", http.StatusMethodNotAllowed},
		{"POST on snapshot", http.MethodPost, "/api/session", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	t.Run("closed session", func(t *testing.T) {
		session.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/session/next", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
	})
}
