package gesture

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ernest-danials/cookture/internal/classifier"
)

// Threshold bounds and defaults.
const (
	MinThreshold     = 0.10
	MaxThreshold     = 0.95
	DefaultThreshold = 0.80
)

// ErrThresholdRange is returned when a threshold is outside [MinThreshold, MaxThreshold].
var ErrThresholdRange = errors.New("threshold out of range")

// Thresholds are the minimum probabilities a gesture must exceed to fire.
type Thresholds struct {
	Swipe float64 `json:"probability_threshold"`
	Fist  float64 `json:"fist_probability_threshold"`
}

// DefaultThresholds returns the factory thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Swipe: DefaultThreshold, Fist: DefaultThreshold}
}

// Validate checks both thresholds are within range.
func (t Thresholds) Validate() error {
	if err := checkRange("probability_threshold", t.Swipe); err != nil {
		return err
	}
	return checkRange("fist_probability_threshold", t.Fist)
}

func checkRange(name string, v float64) error {
	if math.IsNaN(v) || v < MinThreshold || v > MaxThreshold {
		return fmt.Errorf("%w: %s = %.2f, want %.2f to %.2f", ErrThresholdRange, name, v, MinThreshold, MaxThreshold)
	}
	return nil
}

// For returns the threshold that applies to c.
func (t Thresholds) For(c Class) float64 {
	if c.IsFist() {
		return t.Fist
	}
	return t.Swipe
}

// Policy selects when a gesture over threshold fires.
type Policy int

const (
	// PolicyLevel fires whenever the probability exceeds the threshold.
	PolicyLevel Policy = iota
	// PolicyEdge also requires the probability to differ from the previous
	// result's probability for the same label.
	PolicyEdge
)

func (p Policy) String() string {
	if p == PolicyEdge {
		return "edge"
	}
	return "level"
}

// ParsePolicy parses "level" or "edge". An empty string is PolicyLevel.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "level":
		return PolicyLevel, nil
	case "edge":
		return PolicyEdge, nil
	}
	return PolicyLevel, fmt.Errorf("unknown gesture policy %q", s)
}

// Decision is the outcome of evaluating one result.
type Decision struct {
	Label       string  `json:"label"`
	Class       Class   `json:"-"`
	Probability float64 `json:"probability"`
	Previous    float64 `json:"previous"`
	Fired       bool    `json:"fired"`
	Command     Command `json:"command"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the trigger policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithThresholds sets initial thresholds. Invalid values are ignored.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		if t.Validate() == nil {
			e.thresholds = t
		}
	}
}

// WithCounters restores lifetime counters.
func WithCounters(c Counters) Option {
	return func(e *Engine) {
		e.counters = c
	}
}

// Engine decides which classifications become commands. Each result is
// compared with the one before it; at most one command fires per result.
type Engine struct {
	mu         sync.Mutex
	policy     Policy
	thresholds Thresholds
	counters   Counters
	prev       *classifier.Result
}

// NewEngine creates an engine whose previous result assigns zero to every class.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds(),
		prev:       baseline(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func baseline() *classifier.Result {
	probs := make(map[string]float64, numClasses)
	for _, c := range Classes() {
		probs[c.Label()] = 0
	}
	return &classifier.Result{Probabilities: probs}
}

// Evaluate compares res with the previous result and decides whether a
// gesture fires. res always becomes the previous result. A result whose top
// label is unknown, missing from either distribution, or has a non-finite
// probability never fires.
func (e *Engine) Evaluate(res *classifier.Result) Decision {
	if res == nil {
		return Decision{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.prev
	e.prev = res

	d := Decision{Label: res.Label}

	class, known := ParseClass(res.Label)
	newP, okNew := res.Probability(res.Label)
	oldP, okOld := prev.Probability(res.Label)
	d.Probability = newP
	d.Previous = oldP
	if !known || !okNew || !okOld || !finite(newP) {
		return d
	}
	d.Class = class

	if !(newP > e.thresholds.For(class)) {
		return d
	}
	if e.policy == PolicyEdge && newP == oldP {
		return d
	}

	e.counters.inc(class)
	d.Fired = true
	d.Command = class.Command()
	return d
}

func finite(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0)
}

// Latest returns the label and top probability of the most recent result.
func (e *Engine) Latest() (string, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prev.Label, e.prev.TopProbability()
}

// Policy returns the trigger policy.
func (e *Engine) Policy() Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy
}

// Thresholds returns the current thresholds.
func (e *Engine) Thresholds() Thresholds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds
}

// SetThresholds replaces both thresholds. Out of range values are rejected
// with ErrThresholdRange and nothing changes.
func (e *Engine) SetThresholds(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = t
	return nil
}

// ResetThresholds restores the defaults. Counters are untouched.
func (e *Engine) ResetThresholds() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = DefaultThresholds()
}

// Counters returns the lifetime fire counts.
func (e *Engine) Counters() Counters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters
}

// SetCounters replaces the lifetime fire counts.
func (e *Engine) SetCounters(c Counters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counters = c
}

// ResetCounters zeroes every counter. Thresholds are untouched.
func (e *Engine) ResetCounters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counters = Counters{}
}
