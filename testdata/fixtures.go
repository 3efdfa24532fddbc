// Package testdata provides recorded hand windows and recipes for tests.
package testdata

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/window"
)

//go:embed recipes/*
var recipesFS embed.FS

// LoadRecipe returns the raw JSON of a bundled recipe.
func LoadRecipe(name string) ([]byte, error) {
	data, err := recipesFS.ReadFile("recipes/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", name, err)
	}
	return data, nil
}

// WriteRecipe copies a bundled recipe into dir and returns its path.
func WriteRecipe(dir, name string) (string, error) {
	data, err := LoadRecipe(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write recipe %s: %w", name, err)
	}
	return path, nil
}

// SwipeTravel is how far the hand moves vertically in a swipe window.
const SwipeTravel = 0.3

// SwipeUpWindow is an open hand rising across the frame.
func SwipeUpWindow() window.Window {
	return sweep(detector.OpenHand().Keypoints, SwipeTravel/2, -SwipeTravel/2)
}

// SwipeDownWindow is an open hand falling across the frame.
func SwipeDownWindow() window.Window {
	return sweep(detector.OpenHand().Keypoints, -SwipeTravel/2, SwipeTravel/2)
}

// OpenFistWindow is a fist opening in place.
func OpenFistWindow() window.Window {
	return morph(detector.ClosedFist().Keypoints, detector.OpenHand().Keypoints)
}

// CloseFistWindow is an open hand closing in place.
func CloseFistWindow() window.Window {
	return morph(detector.OpenHand().Keypoints, detector.ClosedFist().Keypoints)
}

// StillWindow is an open hand held still.
func StillWindow() window.Window {
	return sweep(detector.OpenHand().Keypoints, 0, 0)
}

// EmptyWindow is a full window in which no joint was detected.
func EmptyWindow() window.Window {
	w := make(window.Window, window.Size)
	for i := range w {
		w[i] = detector.Observation{}
	}
	return w
}

// Dropout removes joints from every frame of w in place and returns it.
func Dropout(w window.Window, joints ...detector.Joint) window.Window {
	for i, obs := range w {
		w[i] = obs.Without(joints...)
	}
	return w
}

// sweep translates pose vertically from offset from to offset to.
func sweep(pose detector.Observation, from, to float32) window.Window {
	w := make(window.Window, window.Size)
	for i := range w {
		f := float32(i) / float32(window.Size-1)
		w[i] = pose.Translate(0, from+(to-from)*f)
	}
	return w
}

// morph holds start for the first third, blends to end over the middle
// third and holds end for the rest.
func morph(start, end detector.Observation) window.Window {
	w := make(window.Window, window.Size)
	third := window.Size / 3
	for i := range w {
		var f float32
		switch {
		case i < third:
			f = 0
		case i >= 2*third:
			f = 1
		default:
			f = float32(i-third) / float32(third)
		}
		w[i] = blend(start, end, f)
	}
	return w
}

func blend(a, b detector.Observation, f float32) detector.Observation {
	out := make(detector.Observation, len(a))
	for j, ka := range a {
		kb, ok := b[j]
		if !ok {
			out[j] = ka
			continue
		}
		out[j] = detector.Keypoint{
			X:          ka.X + (kb.X-ka.X)*f,
			Y:          ka.Y + (kb.Y-ka.Y)*f,
			Confidence: ka.Confidence + (kb.Confidence-ka.Confidence)*f,
		}
	}
	return out
}
