package cooking

import "fmt"

// Phase is the step timer state.
type Phase int

const (
	Idle Phase = iota
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = Idle
	case "running":
		*p = Running
	case "stopped":
		*p = Stopped
	default:
		return fmt.Errorf("unknown timer phase %q", text)
	}
	return nil
}

// Timer is the countdown state machine for one step. It has no clock of its
// own; the owner calls Tick once per second while it is running.
//
//	Idle --Start--> Running --Stop--> Stopped --Start--> Running
//	Running --Tick to 0--> Stopped (remaining cleared)
//	any --Clear--> Idle
type Timer struct {
	phase     Phase
	remaining int
	// hasRemaining is false when idle and after finishing.
	hasRemaining bool
}

// Start begins a countdown of seconds. It is a no-op while running or for a
// non-positive duration.
func (t *Timer) Start(seconds int) bool {
	if t.phase == Running || seconds <= 0 {
		return false
	}
	t.phase = Running
	t.remaining = seconds
	t.hasRemaining = true
	return true
}

// Tick counts down one second. It returns true when the countdown just
// reached zero.
func (t *Timer) Tick() bool {
	if t.phase != Running {
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		return false
	}
	t.phase = Stopped
	t.remaining = 0
	t.hasRemaining = false
	return true
}

// Stop pauses a running countdown, keeping the remaining time.
func (t *Timer) Stop() bool {
	if t.phase != Running {
		return false
	}
	t.phase = Stopped
	return true
}

// Toggle stops a running countdown or starts a new one of seconds.
func (t *Timer) Toggle(seconds int) bool {
	if t.phase == Running {
		return t.Stop()
	}
	return t.Start(seconds)
}

// Clear returns to Idle.
func (t *Timer) Clear() {
	*t = Timer{}
}

// Phase returns the current phase.
func (t *Timer) Phase() Phase {
	return t.phase
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	return t.phase == Running
}

// Remaining returns the seconds left. ok is false when idle or finished.
func (t *Timer) Remaining() (int, bool) {
	return t.remaining, t.hasRemaining
}
