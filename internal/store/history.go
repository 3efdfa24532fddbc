package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GestureEvent is a gesture that fired a command.
type GestureEvent struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Probability float64   `json:"probability"`
	Command     string    `json:"command"`
	StepIndex   int       `json:"step_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryRepository provides access to the fired gesture log.
type HistoryRepository struct {
	db *sql.DB
}

// History returns a HistoryRepository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

// Record inserts e. An empty ID is replaced with a new UUID and a zero
// CreatedAt with the current time.
func (r *HistoryRepository) Record(e *GestureEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO gesture_events (id, label, probability, command, step_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Label, e.Probability, e.Command, e.StepIndex, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record gesture event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID, or ErrNotFound.
func (r *HistoryRepository) GetByID(id string) (*GestureEvent, error) {
	e := &GestureEvent{}
	err := r.db.QueryRow(`
		SELECT id, label, probability, command, step_index, created_at
		FROM gesture_events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Label, &e.Probability, &e.Command, &e.StepIndex, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gesture event: %w", err)
	}
	return e, nil
}

// Recent returns up to limit events, most recently recorded first. A
// non-positive limit returns every event.
func (r *HistoryRepository) Recent(limit int) ([]*GestureEvent, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT id, label, probability, command, step_index, created_at
		FROM gesture_events ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list gesture events: %w", err)
	}
	defer rows.Close()

	var events []*GestureEvent
	for rows.Next() {
		e := &GestureEvent{}
		if err := rows.Scan(&e.ID, &e.Label, &e.Probability, &e.Command, &e.StepIndex, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gesture event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gesture events: %w", err)
	}
	return events, nil
}

// Count returns the number of recorded events.
func (r *HistoryRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM gesture_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count gesture events: %w", err)
	}
	return n, nil
}

// Clear deletes every event.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM gesture_events"); err != nil {
		return fmt.Errorf("failed to clear gesture events: %w", err)
	}
	return nil
}
