// Package classifier adapts gesture recognition models to a common interface.
// A classifier turns one encoded observation window into a probability
// distribution over gesture labels.
package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ernest-danials/cookture/internal/tensor"
)

// Labels produced by the bundled gesture model.
const (
	LabelSwipeUp   = "Swipe up"
	LabelSwipeDown = "Swipe down"
	LabelOpenFist  = "Open fist"
	LabelCloseFist = "Close fist"
)

// DefaultLabels lists the bundled model's labels in output order.
func DefaultLabels() []string {
	return []string{LabelSwipeUp, LabelSwipeDown, LabelOpenFist, LabelCloseFist}
}

// Classifier runs inference over encoded windows.
type Classifier interface {
	// Classify returns the label distribution for x. Failures are
	// *InferenceError values.
	Classify(ctx context.Context, x *tensor.Tensor) (*Result, error)

	// Close releases any resources held by the classifier.
	Close() error
}

// Result is one classification outcome.
type Result struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Probability returns the probability assigned to label, if present.
func (r *Result) Probability(label string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	p, ok := r.Probabilities[label]
	return p, ok
}

// TopProbability returns the probability of the top label.
func (r *Result) TopProbability() float64 {
	p, _ := r.Probability(r.Label)
	return p
}

// FromScores builds a result whose label is the highest scoring entry.
// Ties go to the earliest label. Non-finite scores are rejected.
func FromScores(labels []string, scores []float64) (*Result, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrBadResponse)
	}
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("%w: %d labels but %d scores", ErrBadResponse, len(labels), len(scores))
	}
	if floats.HasNaN(scores) {
		return nil, fmt.Errorf("%w: NaN score", ErrBadResponse)
	}
	for i, s := range scores {
		if math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: infinite score for %q", ErrBadResponse, labels[i])
		}
	}

	probs := make(map[string]float64, len(labels))
	for i, label := range labels {
		probs[label] = scores[i]
	}

	return &Result{
		Label:         labels[floats.MaxIdx(scores)],
		Probabilities: probs,
	}, nil
}

// fromDistribution picks the top label of a label-keyed distribution.
// Labels are visited in sorted order so ties resolve deterministically.
func fromDistribution(probs map[string]float64) (*Result, error) {
	labels := make([]string, 0, len(probs))
	for label := range probs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	scores := make([]float64, len(labels))
	for i, label := range labels {
		scores[i] = probs[label]
	}
	return FromScores(labels, scores)
}
