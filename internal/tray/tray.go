// Package tray provides a system tray interface for hands-free cooking.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/gesture"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onNext     func()
	onPrev     func()
	onTimer    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	last       cooking.State
	lastFired  *gesture.Decision
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuStep        *systray.MenuItem
	menuTimer       *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuTimerAction *systray.MenuItem
}

// New creates a new Tray instance with hands-free enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback called when hands-free mode is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnNext sets the callback called when the next step item is clicked.
func (t *Tray) OnNext(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNext = fn
}

// OnPrev sets the callback called when the previous step item is clicked.
func (t *Tray) OnPrev(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPrev = fn
}

// OnTimer sets the callback called when the timer item is clicked.
func (t *Tray) OnTimer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTimer = fn
}

// OnSettings sets the callback called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Cookture")
	systray.SetTooltip("Cookture hands-free cooking")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hands-free mode")
	systray.AddSeparator()

	t.menuStep = systray.AddMenuItem(stepTitle(t.last), "Current step")
	t.menuStep.Disable()
	t.menuTimer = systray.AddMenuItem(timerTitle(t.last), "Step timer")
	t.menuTimer.Disable()
	t.menuLastGesture = systray.AddMenuItem(gestureTitle(t.lastFired), "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuPrev := systray.AddMenuItem("Previous Step", "Go back one step")
	menuNext := systray.AddMenuItem("Next Step", "Go to the next step")
	t.menuTimerAction = systray.AddMenuItem(timerActionTitle(t.last), "Start or stop the step timer")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Cookture")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuPrev.ClickedCh:
				t.call(func() func() { return t.onPrev })
			case <-menuNext.ClickedCh:
				t.call(func() func() { return t.onNext })
			case <-t.menuTimerAction.ClickedCh:
				t.call(func() func() { return t.onTimer })
			case <-menuSettings.ClickedCh:
				t.call(func() func() { return t.onSettings })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback picked under the read lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// Update refreshes the step, timer and gesture lines from st.
func (t *Tray) Update(st cooking.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = st
	if st.Decision != nil && st.Decision.Fired {
		d := *st.Decision
		t.lastFired = &d
	}
	if t.menuStep == nil {
		return
	}
	t.menuStep.SetTitle(stepTitle(st))
	t.menuTimer.SetTitle(timerTitle(st))
	t.menuLastGesture.SetTitle(gestureTitle(t.lastFired))
	t.menuTimerAction.SetTitle(timerActionTitle(st))
	if st.Timer.Duration == nil {
		t.menuTimerAction.Disable()
	} else {
		t.menuTimerAction.Enable()
	}
}

// Watch applies every state from states until the channel closes.
func (t *Tray) Watch(states <-chan cooking.State) {
	for st := range states {
		t.Update(st)
	}
}

// IsEnabled returns the current hands-free state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Last returns the most recent state passed to Update.
func (t *Tray) Last() cooking.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// LastGesture returns the most recent fired gesture, if any.
func (t *Tray) LastGesture() (gesture.Decision, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastFired == nil {
		return gesture.Decision{}, false
	}
	return *t.lastFired, true
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Hands-free On"
	}
	return "○ Hands-free Off"
}

func stepTitle(st cooking.State) string {
	if st.StepCount == 0 {
		return "No recipe"
	}
	return fmt.Sprintf("Step %d of %d", st.StepIndex+1, st.StepCount)
}

func timerTitle(st cooking.State) string {
	switch {
	case st.Timer.Remaining != nil:
		r := *st.Timer.Remaining
		return fmt.Sprintf("Timer: %d:%02d (%s)", r/60, r%60, st.Timer.Phase)
	case st.Timer.Duration != nil && st.Timer.Phase == cooking.Stopped:
		return "Timer: done"
	case st.Timer.Duration != nil:
		d := *st.Timer.Duration
		return fmt.Sprintf("Timer: %d:%02d", d/60, d%60)
	}
	return "Timer: none"
}

func gestureTitle(d *gesture.Decision) string {
	if d == nil {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s (%.0f%%)", d.Label, d.Probability*100)
}

func timerActionTitle(st cooking.State) string {
	if st.Timer.Phase == cooking.Running {
		return "Stop Timer"
	}
	return "Start Timer"
}
