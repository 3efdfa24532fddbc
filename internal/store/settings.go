package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ernest-danials/cookture/internal/gesture"
)

// Setting keys.
const (
	KeyProbabilityThreshold     = "probabilityThreshold"
	KeyFistProbabilityThreshold = "fistProbabilityThreshold"
	KeySwipeUpScore             = "swipeUpScore"
	KeySwipeDownScore           = "swipeDownScore"
	KeyOpenFistScore            = "openFistScore"
	KeyCloseFistScore           = "closeFistScore"
)

// SettingsRepository provides access to persisted key/value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns a SettingsRepository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// Thresholds returns the saved thresholds. Missing values and stored
// thresholds that are out of range fall back to the defaults.
func (r *SettingsRepository) Thresholds() (gesture.Thresholds, error) {
	def := gesture.DefaultThresholds()

	swipe, err := r.getFloat(KeyProbabilityThreshold, def.Swipe)
	if err != nil {
		return def, err
	}
	fist, err := r.getFloat(KeyFistProbabilityThreshold, def.Fist)
	if err != nil {
		return def, err
	}

	t := gesture.Thresholds{Swipe: swipe, Fist: fist}
	if t.Validate() != nil {
		return def, nil
	}
	return t, nil
}

// SaveThresholds persists both thresholds in one transaction.
func (r *SettingsRepository) SaveThresholds(t gesture.Thresholds) error {
	return r.setAll(map[string]string{
		KeyProbabilityThreshold:     strconv.FormatFloat(t.Swipe, 'f', -1, 64),
		KeyFistProbabilityThreshold: strconv.FormatFloat(t.Fist, 'f', -1, 64),
	})
}

// ResetThresholds removes the saved thresholds so the defaults apply.
func (r *SettingsRepository) ResetThresholds() error {
	return r.deleteAll(KeyProbabilityThreshold, KeyFistProbabilityThreshold)
}

// Counters returns the saved gesture counters. Missing counters are zero.
func (r *SettingsRepository) Counters() (gesture.Counters, error) {
	var c gesture.Counters
	for _, f := range []struct {
		key string
		dst *int
	}{
		{KeySwipeUpScore, &c.SwipeUp},
		{KeySwipeDownScore, &c.SwipeDown},
		{KeyOpenFistScore, &c.OpenFist},
		{KeyCloseFistScore, &c.CloseFist},
	} {
		n, err := r.getInt(f.key)
		if err != nil {
			return gesture.Counters{}, err
		}
		*f.dst = n
	}
	return c, nil
}

// SaveCounters persists all four counters in one transaction.
func (r *SettingsRepository) SaveCounters(c gesture.Counters) error {
	return r.setAll(map[string]string{
		KeySwipeUpScore:   strconv.Itoa(c.SwipeUp),
		KeySwipeDownScore: strconv.Itoa(c.SwipeDown),
		KeyOpenFistScore:  strconv.Itoa(c.OpenFist),
		KeyCloseFistScore: strconv.Itoa(c.CloseFist),
	})
}

// ResetCounters removes the saved counters.
func (r *SettingsRepository) ResetCounters() error {
	return r.deleteAll(KeySwipeUpScore, KeySwipeDownScore, KeyOpenFistScore, KeyCloseFistScore)
}

func (r *SettingsRepository) getFloat(key string, def float64) (float64, error) {
	raw, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, nil
	}
	return v, nil
}

func (r *SettingsRepository) getInt(key string) (int, error) {
	raw, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

func (r *SettingsRepository) setAll(values map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("failed to set setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) deleteAll(keys ...string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
