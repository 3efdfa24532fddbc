// Package tensor encodes observation windows into the classifier input layout.
package tensor

import (
	"errors"
	"fmt"

	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/window"
)

// Channels per joint: x, y, confidence.
const Channels = 3

// ErrInvalidWindow is returned when a window or joint list cannot be encoded.
var ErrInvalidWindow = errors.New("invalid window")

// Shape is the [time, channel, joint] extent of a tensor.
type Shape [3]int

// Len returns the number of cells.
func (s Shape) Len() int {
	return s[0] * s[1] * s[2]
}

// Ints returns the shape as a slice, the form used on the wire.
func (s Shape) Ints() []int {
	return []int{s[0], s[1], s[2]}
}

// Tensor is a dense row-major float32 array of shape [time, channel, joint].
type Tensor struct {
	Data  []float32
	Shape Shape
}

// Index returns the flat offset of (t, c, j).
func (x *Tensor) Index(t, c, j int) int {
	return (t*x.Shape[1]+c)*x.Shape[2] + j
}

// At returns the value at (t, c, j).
func (x *Tensor) At(t, c, j int) float32 {
	return x.Data[x.Index(t, c, j)]
}

// Encode lays out w as [len(w), 3, len(joints)]. Channel 0 is x, 1 is y and
// 2 is confidence. Joints missing from an observation encode as zeros. A
// non-finite keypoint is rejected with ErrInvalidWindow.
func Encode(w window.Window, joints []detector.Joint) (*Tensor, error) {
	if len(w) != window.Size {
		return nil, fmt.Errorf("%w: expected %d observations, got %d", ErrInvalidWindow, window.Size, len(w))
	}
	if len(joints) == 0 {
		return nil, fmt.Errorf("%w: empty joint list", ErrInvalidWindow)
	}

	x := &Tensor{Shape: Shape{len(w), Channels, len(joints)}}
	x.Data = make([]float32, x.Shape.Len())

	for t, obs := range w {
		for j, joint := range joints {
			kp, ok := obs[joint]
			if !ok {
				continue
			}
			if !kp.Finite() {
				return nil, fmt.Errorf("%w: non-finite %s at frame %d", ErrInvalidWindow, joint, t)
			}
			x.Data[x.Index(t, 0, j)] = kp.X
			x.Data[x.Index(t, 1, j)] = kp.Y
			x.Data[x.Index(t, 2, j)] = kp.Confidence
		}
	}

	return x, nil
}
