package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand keypoint detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hands, most
	// confident first. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
// Only the most confident hand drives navigation, so one is enough.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// First returns the observation of the most confident hand, if any.
func First(hands []Hand) (Observation, bool) {
	if len(hands) == 0 || len(hands[0].Keypoints) == 0 {
		return nil, false
	}
	return hands[0].Observation(), true
}
