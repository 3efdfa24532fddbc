// Package app wires the hands-free pipeline: capture, windowing,
// classification and the cooking session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ernest-danials/cookture/internal/capture"
	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/log"
	"github.com/ernest-danials/cookture/internal/window"
)

// DefaultQueueSize is the number of completed windows that may wait for the classifier.
const DefaultQueueSize = 2

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Config holds the collaborators and tunables of the pipeline.
type Config struct {
	// Camera and Detector form the frame producer. With a nil Camera the
	// pipeline only receives observations through Observe.
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier classifier.Classifier
	Session    *cooking.Session

	FPS             int
	MotionThreshold float64
	ClassifyTimeout time.Duration
	QueueSize       int
	// Backpressure makes the buffer stage wait for the classifier instead
	// of dropping completed windows. The camera still never blocks; frames
	// are dropped at the frame queue once it fills.
	Backpressure bool
	// Debug turns encoder precondition violations into panics.
	Debug  bool
	Logger *slog.Logger
}

// Stats counts pipeline activity since Start.
type Stats struct {
	Frames     int64 `json:"frames"`
	Emitted    int64 `json:"emitted"`
	Observed   int64 `json:"observed"`
	Windows    int64 `json:"windows"`
	Dropped    int64 `json:"dropped"`
	Classified int64 `json:"classified"`
	Failed     int64 `json:"failed"`
}

// App is the running pipeline. Observations flow from the capture goroutine
// into the buffer goroutine, completed windows into the classify goroutine,
// and results into the session.
type App struct {
	config  Config
	source  *capture.Source
	logger  *slog.Logger
	frames  chan detector.Observation
	windows chan window.Window

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	stopped   bool
	closeOnce sync.Once

	observed   atomic.Int64
	produced   atomic.Int64
	dropped    atomic.Int64
	classified atomic.Int64
	failed     atomic.Int64
}

// New creates a pipeline. Classifier and Session are required, and a
// Camera needs a Detector.
func New(cfg Config) (*App, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("app: classifier is required")
	}
	if cfg.Session == nil {
		return nil, errors.New("app: session is required")
	}
	if cfg.Camera != nil && cfg.Detector == nil {
		return nil, errors.New("app: camera needs a detector")
	}
	if cfg.FPS <= 0 {
		cfg.FPS = capture.DefaultFPS
	}
	if cfg.ClassifyTimeout <= 0 {
		cfg.ClassifyTimeout = classifier.DefaultTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = log.With("component", "pipeline")
	}

	a := &App{
		config:  cfg,
		logger:  cfg.Logger,
		frames:  make(chan detector.Observation, window.Size),
		windows: make(chan window.Window, cfg.QueueSize),
	}
	if cfg.Camera != nil {
		a.source = capture.NewSource(cfg.Camera, cfg.Detector, capture.SourceConfig{
			FPS:             cfg.FPS,
			MotionThreshold: cfg.MotionThreshold,
			Logger:          cfg.Logger.With("stage", "capture"),
		})
	}
	return a, nil
}

// Start opens the camera and launches the pipeline goroutines. Calling
// Start on a running pipeline does nothing.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrStopped
	}
	if a.running {
		return nil
	}

	if a.config.Camera != nil {
		if err := a.config.Camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true

	if a.source != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.source.Run(ctx, func(obs detector.Observation) { a.enqueue(obs) })
		}()
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.runBuffer(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.runClassify(ctx)
	}()

	a.logger.Info("pipeline started", "capture", a.source != nil, "fps", a.config.FPS)
	return nil
}

// Stop halts the pipeline and releases the camera, detector and
// classifier. It is safe to call more than once.
func (a *App) Stop() {
	a.mu.Lock()
	if a.running {
		a.cancel()
		a.running = false
	}
	a.stopped = true
	a.mu.Unlock()

	a.wg.Wait()

	a.closeOnce.Do(func() {
		if a.config.Camera != nil {
			if err := a.config.Camera.Close(); err != nil {
				a.logger.Warn("close camera", "error", err)
			}
		}
		if a.source != nil {
			a.source.Close()
		}
		if a.config.Detector != nil {
			if err := a.config.Detector.Close(); err != nil {
				a.logger.Warn("close detector", "error", err)
			}
		}
		if err := a.config.Classifier.Close(); err != nil {
			a.logger.Warn("close classifier", "error", err)
		}
		a.logger.Info("pipeline stopped")
	})
}

// Running reports whether the pipeline goroutines are active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Observe injects one observation as if the frame producer had emitted it.
// It reports false when the observation was dropped.
func (a *App) Observe(obs detector.Observation) bool {
	if err := obs.Validate(); err != nil {
		a.logger.Warn("dropping observation", "error", err)
		return false
	}
	a.observed.Add(1)
	return a.enqueue(obs)
}

// SetEnabled pauses or resumes capture without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	if a.source == nil {
		return
	}
	a.source.SetEnabled(enabled)
	a.logger.Info("hands-free toggled", "enabled", enabled)
}

// Enabled reports whether capture is producing observations.
func (a *App) Enabled() bool {
	if a.source == nil {
		return false
	}
	return a.source.Enabled()
}

// Stats returns the pipeline counters.
func (a *App) Stats() Stats {
	st := Stats{
		Observed:   a.observed.Load(),
		Windows:    a.produced.Load(),
		Dropped:    a.dropped.Load(),
		Classified: a.classified.Load(),
		Failed:     a.failed.Load(),
	}
	if a.source != nil {
		st.Frames, st.Emitted = a.source.Stats()
	}
	return st
}

// Session returns the cooking session the pipeline drives.
func (a *App) Session() *cooking.Session {
	return a.config.Session
}

// Classifier returns the classifier backend.
func (a *App) Classifier() classifier.Classifier {
	return a.config.Classifier
}
