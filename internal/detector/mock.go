package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []Hand
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// OpenHand returns a preset right hand with all fingers extended upward.
// Coordinates follow image convention: Y grows downward.
func OpenHand() Hand {
	return Hand{
		Handedness: "Right",
		Score:      0.95,
		Keypoints: Observation{
			Wrist: {X: 0.50, Y: 0.80, Confidence: 0.99},

			// Thumb extended to the side
			ThumbCMC: {X: 0.55, Y: 0.75, Confidence: 0.95},
			ThumbMP:  {X: 0.62, Y: 0.70, Confidence: 0.95},
			ThumbIP:  {X: 0.68, Y: 0.65, Confidence: 0.93},
			ThumbTip: {X: 0.73, Y: 0.60, Confidence: 0.90},

			IndexMCP: {X: 0.55, Y: 0.68, Confidence: 0.97},
			IndexPIP: {X: 0.57, Y: 0.55, Confidence: 0.95},
			IndexDIP: {X: 0.58, Y: 0.45, Confidence: 0.93},
			IndexTip: {X: 0.58, Y: 0.35, Confidence: 0.90},

			MiddleMCP: {X: 0.50, Y: 0.66, Confidence: 0.97},
			MiddlePIP: {X: 0.50, Y: 0.52, Confidence: 0.95},
			MiddleDIP: {X: 0.50, Y: 0.40, Confidence: 0.93},
			MiddleTip: {X: 0.50, Y: 0.28, Confidence: 0.90},

			RingMCP: {X: 0.45, Y: 0.68, Confidence: 0.96},
			RingPIP: {X: 0.43, Y: 0.55, Confidence: 0.94},
			RingDIP: {X: 0.42, Y: 0.45, Confidence: 0.92},
			RingTip: {X: 0.42, Y: 0.35, Confidence: 0.89},

			LittleMCP: {X: 0.40, Y: 0.70, Confidence: 0.95},
			LittlePIP: {X: 0.37, Y: 0.60, Confidence: 0.93},
			LittleDIP: {X: 0.35, Y: 0.50, Confidence: 0.90},
			LittleTip: {X: 0.34, Y: 0.42, Confidence: 0.87},
		},
	}
}

// ClosedFist returns a preset right hand with every finger curled into the palm.
func ClosedFist() Hand {
	return Hand{
		Handedness: "Right",
		Score:      0.93,
		Keypoints: Observation{
			Wrist: {X: 0.50, Y: 0.80, Confidence: 0.99},

			ThumbCMC: {X: 0.55, Y: 0.75, Confidence: 0.94},
			ThumbMP:  {X: 0.57, Y: 0.70, Confidence: 0.92},
			ThumbIP:  {X: 0.55, Y: 0.67, Confidence: 0.90},
			ThumbTip: {X: 0.52, Y: 0.66, Confidence: 0.88},

			IndexMCP: {X: 0.55, Y: 0.70, Confidence: 0.96},
			IndexPIP: {X: 0.55, Y: 0.68, Confidence: 0.93},
			IndexDIP: {X: 0.52, Y: 0.70, Confidence: 0.90},
			IndexTip: {X: 0.50, Y: 0.72, Confidence: 0.86},

			MiddleMCP: {X: 0.50, Y: 0.68, Confidence: 0.96},
			MiddlePIP: {X: 0.50, Y: 0.66, Confidence: 0.93},
			MiddleDIP: {X: 0.47, Y: 0.68, Confidence: 0.90},
			MiddleTip: {X: 0.45, Y: 0.70, Confidence: 0.86},

			RingMCP: {X: 0.45, Y: 0.70, Confidence: 0.95},
			RingPIP: {X: 0.45, Y: 0.68, Confidence: 0.92},
			RingDIP: {X: 0.42, Y: 0.70, Confidence: 0.89},
			RingTip: {X: 0.40, Y: 0.72, Confidence: 0.85},

			LittleMCP: {X: 0.40, Y: 0.72, Confidence: 0.94},
			LittlePIP: {X: 0.40, Y: 0.70, Confidence: 0.91},
			LittleDIP: {X: 0.37, Y: 0.72, Confidence: 0.88},
			LittleTip: {X: 0.35, Y: 0.74, Confidence: 0.84},
		},
	}
}
