package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/gesture"
)

func settingsRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSettingsHandler_Get(t *testing.T) {
	handler := NewSettingsHandler(newTestSession(t))

	rec := settingsRequest(t, handler, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp settingsResponse
	decode(t, rec, &resp)
	if resp.ProbabilityThreshold != 0.80 || resp.FistProbabilityThreshold != 0.80 {
		t.Errorf("expected default thresholds, got %+v", resp)
	}
	if resp.MinThreshold != 0.10 || resp.MaxThreshold != 0.95 {
		t.Errorf("expected bounds 0.10..0.95, got %v..%v", resp.MinThreshold, resp.MaxThreshold)
	}
	if resp.Policy != "level" {
		t.Errorf("expected level policy, got %q", resp.Policy)
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	session := newTestSession(t)
	handler := NewSettingsHandler(session)

	rec := settingsRequest(t, handler, http.MethodPut, "/api/settings", `{"probability_threshold": 0.6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp settingsResponse
	decode(t, rec, &resp)
	if resp.ProbabilityThreshold != 0.6 || resp.FistProbabilityThreshold != 0.80 {
		t.Errorf("only the swipe threshold should change, got %+v", resp)
	}

	rec = settingsRequest(t, handler, http.MethodPut, "/api/settings", `{"fist_probability_threshold": 0.95}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upper bound is inclusive, got status %d", rec.Code)
	}

	for _, body := range []string{
		`{"probability_threshold": 0.05}`,
		`{"fist_probability_threshold": 0.99}`,
	} {
		rec = settingsRequest(t, handler, http.MethodPut, "/api/settings", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
		}
	}

	rec = settingsRequest(t, handler, http.MethodPut, "/api/settings", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for invalid JSON, got %d", http.StatusBadRequest, rec.Code)
	}

	want := gesture.Thresholds{Swipe: 0.6, Fist: 0.95}
	if got := session.Snapshot().Thresholds; got != want {
		t.Errorf("rejected writes should not change thresholds: got %+v, want %+v", got, want)
	}
}

func TestSettingsHandler_ConcurrentPartialUpdates(t *testing.T) {
	for round := 0; round < 20; round++ {
		session := newTestSession(t)
		handler := NewSettingsHandler(session)

		bodies := []string{
			`{"probability_threshold": 0.5}`,
			`{"fist_probability_threshold": 0.6}`,
		}
		var wg sync.WaitGroup
		for _, body := range bodies {
			wg.Add(1)
			go func(body string) {
				defer wg.Done()
				rec := settingsRequest(t, handler, http.MethodPut, "/api/settings", body)
				if rec.Code != http.StatusOK {
					t.Errorf("%s: expected status %d, got %d", body, http.StatusOK, rec.Code)
				}
			}(body)
		}
		wg.Wait()

		want := gesture.Thresholds{Swipe: 0.5, Fist: 0.6}
		if got := session.Snapshot().Thresholds; got != want {
			t.Fatalf("round %d: concurrent updates lost a write: got %+v, want %+v", round, got, want)
		}
	}
}

func TestSettingsHandler_Resets(t *testing.T) {
	engine := gesture.NewEngine(gesture.WithCounters(gesture.Counters{SwipeUp: 3}))
	session := newTestSession(t, cooking.WithEngine(engine))
	handler := NewSettingsHandler(session)

	if _, err := session.HandleResult(&classifier.Result{
		Label:         classifier.LabelOpenFist,
		Probabilities: map[string]float64{classifier.LabelOpenFist: 0.9},
	}); err != nil {
		t.Fatalf("failed to handle result: %v", err)
	}
	if err := session.SetThresholds(gesture.Thresholds{Swipe: 0.5, Fist: 0.5}); err != nil {
		t.Fatalf("failed to set thresholds: %v", err)
	}

	rec := settingsRequest(t, handler, http.MethodPost, "/api/settings/reset-history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp settingsResponse
	decode(t, rec, &resp)
	if resp.Counters != (gesture.Counters{}) {
		t.Errorf("reset-history should zero counters, got %+v", resp.Counters)
	}
	if resp.ProbabilityThreshold != 0.5 {
		t.Errorf("reset-history should keep thresholds, got %v", resp.ProbabilityThreshold)
	}

	rec = settingsRequest(t, handler, http.MethodPost, "/api/settings/reset-thresholds", "")
	decode(t, rec, &resp)
	if resp.ProbabilityThreshold != 0.80 || resp.FistProbabilityThreshold != 0.80 {
		t.Errorf("reset-thresholds should restore defaults, got %+v", resp)
	}

	rec = settingsRequest(t, handler, http.MethodGet, "/api/settings/reset-thresholds", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	rec = settingsRequest(t, handler, http.MethodPost, "/api/settings/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
