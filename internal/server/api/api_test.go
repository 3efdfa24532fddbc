package api

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/log"
	"github.com/ernest-danials/cookture/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// newTestSession creates a three step session whose second step has a
// two minute timer.
func newTestSession(t *testing.T, opts ...cooking.SessionOption) *cooking.Session {
	t.Helper()

	two := 2
	recipe := &cooking.Recipe{
		ID:   uuid.New(),
		Name: "test recipe",
		Steps: []cooking.Step{
			{ID: uuid.New(), Order: 1, Instruction: "mix"},
			{ID: uuid.New(), Order: 2, Instruction: "rest", TimerDuration: &two},
			{ID: uuid.New(), Order: 3, Instruction: "bake"},
		},
	}

	opts = append([]cooking.SessionOption{cooking.WithLogger(log.Discard())}, opts...)
	s, err := cooking.NewSession(recipe, opts...)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
