package store

import (
	"github.com/ernest-danials/cookture/internal/gesture"
)

// Preferences adapts the store to the persistence a cooking session needs.
type Preferences struct {
	settings *SettingsRepository
	history  *HistoryRepository
}

// Preferences returns a session persistence adapter for this store.
func (s *Store) Preferences() *Preferences {
	return &Preferences{settings: s.Settings(), history: s.History()}
}

// SaveThresholds persists t.
func (p *Preferences) SaveThresholds(t gesture.Thresholds) error {
	return p.settings.SaveThresholds(t)
}

// SaveCounters persists c.
func (p *Preferences) SaveCounters(c gesture.Counters) error {
	return p.settings.SaveCounters(c)
}

// RecordGesture appends a fired gesture to the history.
func (p *Preferences) RecordGesture(d gesture.Decision, stepIndex int) error {
	return p.history.Record(&GestureEvent{
		Label:       d.Label,
		Probability: d.Probability,
		Command:     d.Command.String(),
		StepIndex:   stepIndex,
	})
}
