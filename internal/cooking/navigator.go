package cooking

// Navigator tracks the current step. The index stays within [0, Count()-1];
// moving past either end is a no-op.
type Navigator struct {
	steps []Step
	index int
}

// NewNavigator starts at the first of steps. steps must not be empty.
func NewNavigator(steps []Step) *Navigator {
	return &Navigator{steps: steps}
}

// Advance moves to the next step. It returns false on the last step.
func (n *Navigator) Advance() bool {
	if n.index >= len(n.steps)-1 {
		return false
	}
	n.index++
	return true
}

// Retreat moves to the previous step. It returns false on the first step.
func (n *Navigator) Retreat() bool {
	if n.index <= 0 {
		return false
	}
	n.index--
	return true
}

// Index returns the current step index.
func (n *Navigator) Index() int {
	return n.index
}

// Current returns the current step.
func (n *Navigator) Current() Step {
	return n.steps[n.index]
}

// Count returns the number of steps.
func (n *Navigator) Count() int {
	return len(n.steps)
}
