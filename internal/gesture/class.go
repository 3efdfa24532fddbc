// Package gesture turns classifier results into navigation and timer commands.
package gesture

import (
	"fmt"

	"github.com/ernest-danials/cookture/internal/classifier"
)

// Class is one of the four recognized gestures.
type Class int

const (
	SwipeUp Class = iota
	SwipeDown
	OpenFist
	CloseFist
	numClasses
)

// Classes returns every gesture class in label order.
func Classes() []Class {
	return []Class{SwipeUp, SwipeDown, OpenFist, CloseFist}
}

// Label returns the model label for c.
func (c Class) Label() string {
	switch c {
	case SwipeUp:
		return classifier.LabelSwipeUp
	case SwipeDown:
		return classifier.LabelSwipeDown
	case OpenFist:
		return classifier.LabelOpenFist
	case CloseFist:
		return classifier.LabelCloseFist
	}
	return ""
}

func (c Class) String() string {
	if l := c.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ParseClass maps a model label to its class. ok is false for labels the
// app does not act on.
func ParseClass(label string) (Class, bool) {
	for _, c := range Classes() {
		if c.Label() == label {
			return c, true
		}
	}
	return 0, false
}

// IsFist reports whether c belongs to the fist group.
func (c Class) IsFist() bool {
	return c == OpenFist || c == CloseFist
}

// Command returns the action c triggers.
func (c Class) Command() Command {
	switch c {
	case SwipeUp:
		return CommandAdvance
	case SwipeDown:
		return CommandRetreat
	case OpenFist:
		return CommandStartTimer
	case CloseFist:
		return CommandStopTimer
	}
	return CommandNone
}

// Command is an action requested by a gesture.
type Command int

const (
	CommandNone Command = iota
	CommandAdvance
	CommandRetreat
	CommandStartTimer
	CommandStopTimer
)

func (c Command) String() string {
	switch c {
	case CommandAdvance:
		return "advance"
	case CommandRetreat:
		return "retreat"
	case CommandStartTimer:
		return "start_timer"
	case CommandStopTimer:
		return "stop_timer"
	}
	return "none"
}

// MarshalText encodes the command name.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a command name.
func (c *Command) UnmarshalText(text []byte) error {
	for cmd := CommandNone; cmd <= CommandStopTimer; cmd++ {
		if cmd.String() == string(text) {
			*c = cmd
			return nil
		}
	}
	return fmt.Errorf("unknown command %q", text)
}

// Counters is the lifetime number of times each gesture fired.
type Counters struct {
	SwipeUp   int `json:"swipe_up"`
	SwipeDown int `json:"swipe_down"`
	OpenFist  int `json:"open_fist"`
	CloseFist int `json:"close_fist"`
}

// Get returns the counter for c.
func (n Counters) Get(c Class) int {
	switch c {
	case SwipeUp:
		return n.SwipeUp
	case SwipeDown:
		return n.SwipeDown
	case OpenFist:
		return n.OpenFist
	case CloseFist:
		return n.CloseFist
	}
	return 0
}

func (n *Counters) inc(c Class) {
	switch c {
	case SwipeUp:
		n.SwipeUp++
	case SwipeDown:
		n.SwipeDown++
	case OpenFist:
		n.OpenFist++
	case CloseFist:
		n.CloseFist++
	}
}
