package cooking

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/gesture"
	"github.com/ernest-danials/cookture/internal/log"
)

// ErrClosed is returned by every Session call after Close.
var ErrClosed = errors.New("session closed")

// Preferences persists the settings a session changes and the gestures it acts on.
type Preferences interface {
	SaveThresholds(gesture.Thresholds) error
	SaveCounters(gesture.Counters) error
	RecordGesture(d gesture.Decision, stepIndex int) error
}

// TimerState is the timer part of a snapshot.
type TimerState struct {
	Phase     Phase `json:"phase"`
	Remaining *int  `json:"remaining"`
	// Duration is the current step's timer length in seconds, if any.
	Duration *int `json:"duration"`
}

// GestureState is the latest classification seen by the session.
type GestureState struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// State is a point-in-time copy of the session.
type State struct {
	Version    uint64             `json:"version"`
	Recipe     string             `json:"recipe"`
	StepIndex  int                `json:"step_index"`
	StepCount  int                `json:"step_count"`
	Step       Step               `json:"step"`
	Timer      TimerState         `json:"timer"`
	Gesture    GestureState       `json:"gesture"`
	Decision   *gesture.Decision  `json:"decision,omitempty"`
	Counters   gesture.Counters   `json:"counters"`
	Thresholds gesture.Thresholds `json:"thresholds"`
	Policy     string             `json:"policy"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEngine uses e for gesture decisions instead of a default engine.
func WithEngine(e *gesture.Engine) SessionOption {
	return func(s *Session) {
		s.engine = e
	}
}

// WithPreferences persists threshold and counter changes to p.
func WithPreferences(p Preferences) SessionOption {
	return func(s *Session) {
		s.prefs = p
	}
}

// WithTickInterval overrides the one second timer tick.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.tickEvery = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// Session owns the navigation, timer and gesture state of one cooking run.
// A single goroutine applies every change; manual calls and classification
// results are serialized through it.
type Session struct {
	recipe    *Recipe
	nav       *Navigator
	timer     Timer
	engine    *gesture.Engine
	prefs     Preferences
	logger    *slog.Logger
	tickEvery time.Duration

	// Owned by the loop goroutine.
	ticker   *time.Ticker
	subs     map[int]chan State
	nextSub  int
	version  uint64
	decision *gesture.Decision

	last      atomic.Pointer[State]
	calls     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewSession starts a session on the first step of recipe.
func NewSession(recipe *Recipe, opts ...SessionOption) (*Session, error) {
	if recipe == nil || len(recipe.Steps) == 0 {
		return nil, ErrEmptyRecipe
	}

	s := &Session{
		recipe:    recipe,
		nav:       NewNavigator(recipe.Steps),
		tickEvery: time.Second,
		subs:      make(map[int]chan State),
		calls:     make(chan func()),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = gesture.NewEngine()
	}
	if s.logger == nil {
		s.logger = log.With("component", "session")
	}

	s.publish()
	go s.loop()
	return s, nil
}

func (s *Session) loop() {
	defer close(s.stopped)

	for {
		var tick <-chan time.Time
		if s.ticker != nil {
			tick = s.ticker.C
		}

		select {
		case fn := <-s.calls:
			fn()
		case <-tick:
			s.onTick()
		case <-s.done:
			s.stopTicker()
			for id, ch := range s.subs {
				close(ch)
				delete(s.subs, id)
			}
			return
		}
	}
}

// call runs fn on the session goroutine and waits for it.
func (s *Session) call(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.calls <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// Advance moves to the next step.
func (s *Session) Advance() (bool, error) {
	var moved bool
	err := s.call(func() {
		moved = s.advance()
		s.publish()
	})
	return moved, err
}

// Retreat moves to the previous step.
func (s *Session) Retreat() (bool, error) {
	var moved bool
	err := s.call(func() {
		moved = s.retreat()
		s.publish()
	})
	return moved, err
}

// StartTimer starts the current step's timer. Steps without a timer and
// running timers are left alone.
func (s *Session) StartTimer() (bool, error) {
	var started bool
	err := s.call(func() {
		started = s.startTimer()
		s.publish()
	})
	return started, err
}

// StopTimer pauses a running timer.
func (s *Session) StopTimer() (bool, error) {
	var stopped bool
	err := s.call(func() {
		stopped = s.stopTimer()
		s.publish()
	})
	return stopped, err
}

// ToggleTimer stops a running timer or starts the current step's timer.
func (s *Session) ToggleTimer() (bool, error) {
	var changed bool
	err := s.call(func() {
		if s.timer.Running() {
			changed = s.stopTimer()
		} else {
			changed = s.startTimer()
		}
		s.publish()
	})
	return changed, err
}

// HandleResult feeds a classification to the gesture engine and applies the
// resulting command. Results arriving after Close are dropped.
func (s *Session) HandleResult(res *classifier.Result) (gesture.Decision, error) {
	var d gesture.Decision
	err := s.call(func() {
		d = s.engine.Evaluate(res)
		if d.Fired {
			step := s.nav.Index()
			applied := s.apply(d.Command)
			s.logger.Info("gesture fired",
				"gesture", d.Label,
				"probability", d.Probability,
				"command", d.Command.String(),
				"applied", applied,
			)
			s.saveCounters()
			s.recordGesture(d, step)
		}
		s.decision = &d
		s.publish()
	})
	return d, err
}

// SetThresholds validates and stores both thresholds.
func (s *Session) SetThresholds(t gesture.Thresholds) error {
	return s.UpdateThresholds(&t.Swipe, &t.Fist)
}

// UpdateThresholds changes only the thresholds that are non-nil. The merge
// with the current values happens on the session goroutine, so concurrent
// partial updates never overwrite each other.
func (s *Session) UpdateThresholds(swipe, fist *float64) error {
	var setErr error
	err := s.call(func() {
		t := s.engine.Thresholds()
		if swipe != nil {
			t.Swipe = *swipe
		}
		if fist != nil {
			t.Fist = *fist
		}
		if setErr = s.engine.SetThresholds(t); setErr != nil {
			return
		}
		s.saveThresholds()
		s.publish()
	})
	if err != nil {
		return err
	}
	return setErr
}

// ResetThresholds restores the default thresholds. Counters are kept.
func (s *Session) ResetThresholds() error {
	return s.call(func() {
		s.engine.ResetThresholds()
		s.saveThresholds()
		s.publish()
	})
}

// ResetCounters zeroes the gesture counters. Thresholds are kept.
func (s *Session) ResetCounters() error {
	return s.call(func() {
		s.engine.ResetCounters()
		s.saveCounters()
		s.publish()
	})
}

// Snapshot returns the most recently published state. It keeps working
// after Close and then reports the final state.
func (s *Session) Snapshot() State {
	return *s.last.Load()
}

// Subscribe returns a channel receiving every new state, starting with the
// current one, and a function to cancel the subscription. A subscriber that
// falls behind only sees the newest state. The channel is closed when the
// session closes.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	var id int

	err := s.call(func() {
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
		ch <- *s.last.Load()
	})
	if err != nil {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			_ = s.call(func() {
				if c, ok := s.subs[id]; ok {
					close(c)
					delete(s.subs, id)
				}
			})
		})
	}
}

// Close stops the session goroutine and its timer. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
	return nil
}

// Everything below runs on the session goroutine.

func (s *Session) apply(cmd gesture.Command) bool {
	switch cmd {
	case gesture.CommandAdvance:
		return s.advance()
	case gesture.CommandRetreat:
		return s.retreat()
	case gesture.CommandStartTimer:
		return s.startTimer()
	case gesture.CommandStopTimer:
		return s.stopTimer()
	}
	return false
}

func (s *Session) advance() bool {
	if !s.nav.Advance() {
		return false
	}
	s.clearTimer()
	return true
}

func (s *Session) retreat() bool {
	if !s.nav.Retreat() {
		return false
	}
	s.clearTimer()
	return true
}

func (s *Session) startTimer() bool {
	secs, ok := s.nav.Current().TimerSeconds()
	if !ok || !s.timer.Start(secs) {
		return false
	}
	s.stopTicker()
	s.ticker = time.NewTicker(s.tickEvery)
	return true
}

func (s *Session) stopTimer() bool {
	if !s.timer.Stop() {
		return false
	}
	s.stopTicker()
	return true
}

func (s *Session) clearTimer() {
	s.timer.Clear()
	s.stopTicker()
}

func (s *Session) onTick() {
	if s.timer.Tick() {
		s.stopTicker()
		s.logger.Info("timer finished", "step", s.nav.Index())
	}
	s.publish()
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Session) saveThresholds() {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SaveThresholds(s.engine.Thresholds()); err != nil {
		s.logger.Error("persist thresholds", "error", err)
	}
}

func (s *Session) saveCounters() {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SaveCounters(s.engine.Counters()); err != nil {
		s.logger.Error("persist counters", "error", err)
	}
}

// recordGesture logs a fired gesture against the step it was made on.
func (s *Session) recordGesture(d gesture.Decision, step int) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.RecordGesture(d, step); err != nil {
		s.logger.Error("record gesture", "error", err)
	}
}

func (s *Session) publish() {
	s.version++
	st := s.state()
	s.last.Store(&st)

	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Drop the stale state so the subscriber sees the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (s *Session) state() State {
	step := s.nav.Current()
	label, p := s.engine.Latest()

	st := State{
		Version:    s.version,
		Recipe:     s.recipe.Name,
		StepIndex:  s.nav.Index(),
		StepCount:  s.nav.Count(),
		Step:       step,
		Timer:      TimerState{Phase: s.timer.Phase()},
		Gesture:    GestureState{Label: label, Probability: p},
		Counters:   s.engine.Counters(),
		Thresholds: s.engine.Thresholds(),
		Policy:     s.engine.Policy().String(),
	}
	if r, ok := s.timer.Remaining(); ok {
		st.Timer.Remaining = &r
	}
	if d, ok := step.TimerSeconds(); ok {
		st.Timer.Duration = &d
	}
	if s.decision != nil {
		d := *s.decision
		st.Decision = &d
	}
	return st
}

// String describes the session position for logs and the tray.
func (st State) String() string {
	line := fmt.Sprintf("Step %d of %d", st.StepIndex+1, st.StepCount)
	if st.Timer.Remaining != nil {
		r := *st.Timer.Remaining
		line += fmt.Sprintf(" | %s %d:%02d", st.Timer.Phase, r/60, r%60)
	}
	return line
}
