package app

import (
	"context"
	"errors"

	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/tensor"
	"github.com/ernest-danials/cookture/internal/window"
)

// enqueue hands an observation to the buffer stage without blocking the producer.
func (a *App) enqueue(obs detector.Observation) bool {
	select {
	case a.frames <- obs:
		return true
	default:
		a.logger.Debug("frame queue full, dropping observation")
		return false
	}
}

// runBuffer collects observations into disjoint windows and queues each
// completed window for classification. A full queue drops the window unless
// Backpressure is set.
func (a *App) runBuffer(ctx context.Context) {
	buf := window.New(window.Size)

	for {
		select {
		case <-ctx.Done():
			return
		case obs := <-a.frames:
			w, ok := buf.Push(obs)
			if !ok {
				continue
			}
			a.produced.Add(1)

			if a.config.Backpressure {
				select {
				case a.windows <- w:
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case a.windows <- w:
			default:
				a.dropped.Add(1)
				a.logger.Warn("classifier behind, dropping window", "queued", len(a.windows))
			}
		}
	}
}

// runClassify encodes and classifies windows in arrival order and feeds
// each result to the session.
func (a *App) runClassify(ctx context.Context) {
	joints := detector.JointOrder()

	for {
		select {
		case <-ctx.Done():
			return
		case w := <-a.windows:
			a.classify(ctx, w, joints)
		}
	}
}

func (a *App) classify(ctx context.Context, w window.Window, joints []detector.Joint) {
	x, err := tensor.Encode(w, joints)
	if err != nil {
		if a.config.Debug {
			panic(err)
		}
		a.failed.Add(1)
		a.logger.Error("encode window", "error", err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, a.config.ClassifyTimeout)
	res, err := a.config.Classifier.Classify(cctx, x)
	cancel()
	if err != nil {
		a.failed.Add(1)
		if ctx.Err() == nil {
			a.logger.Warn("classify window", "error", err)
		}
		return
	}

	// A result finishing after Stop is dropped.
	if ctx.Err() != nil {
		return
	}
	a.classified.Add(1)

	d, err := a.config.Session.HandleResult(res)
	if err != nil {
		if !errors.Is(err, cooking.ErrClosed) {
			a.logger.Error("handle result", "error", err)
		}
		return
	}
	a.logger.Debug("window classified",
		"label", res.Label,
		"probability", res.TopProbability(),
		"fired", d.Fired,
	)
}
