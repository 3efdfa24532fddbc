// Package detector provides hand keypoint detection interfaces and types for gesture recognition.
package detector

import (
	"fmt"
	"math"
)

// Joint identifies one of the 21 hand keypoints.
type Joint int

// Hand joints in the order the classifier expects them.
const (
	Wrist Joint = iota
	ThumbCMC
	ThumbMP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	LittleMCP
	LittlePIP
	LittleDIP
	LittleTip
	NumJoints = 21
)

var jointNames = [NumJoints]string{
	"wrist",
	"thumbCMC", "thumbMP", "thumbIP", "thumbTip",
	"indexMCP", "indexPIP", "indexDIP", "indexTip",
	"middleMCP", "middlePIP", "middleDIP", "middleTip",
	"ringMCP", "ringPIP", "ringDIP", "ringTip",
	"littleMCP", "littlePIP", "littleDIP", "littleTip",
}

// JointOrder returns the fixed joint ordering used for tensor encoding.
func JointOrder() []Joint {
	joints := make([]Joint, NumJoints)
	for i := range joints {
		joints[i] = Joint(i)
	}
	return joints
}

// Valid reports whether j is one of the 21 known joints.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("Joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJoint returns the joint with the given name.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// MarshalText lets joints be used as JSON object keys.
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText parses a joint name.
func (j *Joint) UnmarshalText(text []byte) error {
	parsed, err := ParseJoint(string(text))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// Keypoint is a detected joint location in normalized image coordinates.
type Keypoint struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Confidence float32 `json:"confidence"`
}

// Observation is one frame's hand pose. Undetected joints have no entry.
type Observation map[Joint]Keypoint

// Validate checks that the observation only contains known joints with
// finite coordinates and confidence.
func (o Observation) Validate() error {
	for j, kp := range o {
		if !j.Valid() {
			return fmt.Errorf("observation contains unknown joint %d", int(j))
		}
		if !kp.Finite() {
			return fmt.Errorf("observation has non-finite keypoint for %s", j)
		}
	}
	return nil
}

// Finite reports whether X, Y and Confidence are all finite numbers.
func (k Keypoint) Finite() bool {
	for _, v := range [...]float32{k.X, k.Y, k.Confidence} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the observation.
func (o Observation) Clone() Observation {
	c := make(Observation, len(o))
	for j, kp := range o {
		c[j] = kp
	}
	return c
}

// Translate returns a copy with every keypoint shifted by (dx, dy).
func (o Observation) Translate(dx, dy float32) Observation {
	c := make(Observation, len(o))
	for j, kp := range o {
		kp.X += dx
		kp.Y += dy
		c[j] = kp
	}
	return c
}

// Without returns a copy with the given joints removed.
func (o Observation) Without(joints ...Joint) Observation {
	c := o.Clone()
	for _, j := range joints {
		delete(c, j)
	}
	return c
}

// Hand is one detected hand.
type Hand struct {
	Keypoints  Observation `json:"keypoints"`
	Handedness string      `json:"handedness"` // "Left" or "Right"
	Score      float64     `json:"score"`
}

// Observation returns a copy of the hand's keypoints.
func (h Hand) Observation() Observation {
	return h.Keypoints.Clone()
}

// Spread returns the mean distance from the wrist to the five fingertips.
// It is small for a closed fist and large for an open hand. Returns 0 when
// the wrist or every fingertip is missing.
func (o Observation) Spread() float64 {
	wrist, ok := o[Wrist]
	if !ok {
		return 0
	}

	var sum float64
	var n int
	for _, tip := range []Joint{ThumbTip, IndexTip, MiddleTip, RingTip, LittleTip} {
		kp, ok := o[tip]
		if !ok {
			continue
		}
		dx := float64(kp.X - wrist.X)
		dy := float64(kp.Y - wrist.Y)
		sum += math.Sqrt(dx*dx + dy*dy)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
