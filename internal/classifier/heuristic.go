package classifier

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/tensor"
)

const heuristicBackend = "heuristic"

// Heuristic scale factors: a score of 1 per this much normalized movement.
const (
	swipeScale  = 0.05
	spreadScale = 0.05
)

var fingertips = []detector.Joint{
	detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.LittleTip,
}

// Heuristic classifies windows from hand geometry alone. Vertical wrist
// travel scores the swipes and the change in fingertip spread scores the
// fists; a softmax turns the scores into probabilities. It expects tensors
// encoded in detector.JointOrder.
type Heuristic struct{}

// NewHeuristic returns a Heuristic classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Classify scores x.
func (h *Heuristic) Classify(ctx context.Context, x *tensor.Tensor) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(heuristicBackend, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	if x == nil || x.Shape[1] != tensor.Channels || x.Shape[2] != detector.NumJoints || len(x.Data) != x.Shape.Len() {
		var shape any
		if x != nil {
			shape = x.Shape
		}
		return nil, WrapError(heuristicBackend, fmt.Errorf("%w: want [T %d %d], got %v", ErrShapeMismatch, tensor.Channels, detector.NumJoints, shape))
	}

	travel := wristTravel(x)
	spread := spreadChange(x)

	scores := []float64{
		travel / swipeScale,
		-travel / swipeScale,
		spread / spreadScale,
		-spread / spreadScale,
	}
	res, err := FromScores(DefaultLabels(), softmax(scores))
	if err != nil {
		return nil, WrapError(heuristicBackend, err)
	}
	return res, nil
}

// Close is a no-op.
func (h *Heuristic) Close() error {
	return nil
}

// softmax normalizes scores in place and returns them.
func softmax(scores []float64) []float64 {
	lse := floats.LogSumExp(scores)
	for i, s := range scores {
		scores[i] = math.Exp(s - lse)
	}
	return scores
}

func detected(x *tensor.Tensor, t int, j detector.Joint) bool {
	return x.At(t, 2, int(j)) > 0
}

// wristTravel returns how far the wrist rose between the first and last
// frames where it was detected. Image Y grows downwards, so upward movement
// is positive.
func wristTravel(x *tensor.Tensor) float64 {
	first, last := -1, -1
	for t := 0; t < x.Shape[0]; t++ {
		if !detected(x, t, detector.Wrist) {
			continue
		}
		if first < 0 {
			first = t
		}
		last = t
	}
	if first < 0 || first == last {
		return 0
	}
	w := int(detector.Wrist)
	return float64(x.At(first, 1, w) - x.At(last, 1, w))
}

// spreadChange returns the mean fingertip spread over the last quarter of
// the window minus the mean over the first quarter. Opening the hand makes
// it positive.
func spreadChange(x *tensor.Tensor) float64 {
	q := x.Shape[0] / 4
	if q == 0 {
		return 0
	}
	start, okStart := meanSpread(x, 0, q)
	end, okEnd := meanSpread(x, x.Shape[0]-q, x.Shape[0])
	if !okStart || !okEnd {
		return 0
	}
	return end - start
}

func meanSpread(x *tensor.Tensor, from, to int) (float64, bool) {
	var spreads []float64
	for t := from; t < to; t++ {
		if s, ok := frameSpread(x, t); ok {
			spreads = append(spreads, s)
		}
	}
	if len(spreads) == 0 {
		return 0, false
	}
	return floats.Sum(spreads) / float64(len(spreads)), true
}

func frameSpread(x *tensor.Tensor, t int) (float64, bool) {
	if !detected(x, t, detector.Wrist) {
		return 0, false
	}
	w := int(detector.Wrist)
	wx, wy := x.At(t, 0, w), x.At(t, 1, w)

	var dists []float64
	for _, tip := range fingertips {
		if !detected(x, t, tip) {
			continue
		}
		dx := float64(x.At(t, 0, int(tip)) - wx)
		dy := float64(x.At(t, 1, int(tip)) - wy)
		dists = append(dists, math.Hypot(dx, dy))
	}
	if len(dists) == 0 {
		return 0, false
	}
	return floats.Sum(dists) / float64(len(dists)), true
}
