package capture

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/log"
)

// Capture timing constants.
const (
	// IdleFPS is the frame rate while the motion gate is idle.
	IdleFPS = 5
	// IdleTimeout is how long without motion before the gate returns to idle.
	IdleTimeout = 2 * time.Second
)

// SourceConfig configures a Source.
type SourceConfig struct {
	// FPS is the capture rate while active.
	FPS int
	// MotionThreshold enables motion gating when positive. While idle the
	// source samples at IdleFPS and skips hand detection.
	MotionThreshold float64
	Logger          *slog.Logger
}

// Source is the keypoint frame producer. It reads frames from a camera, runs
// the hand detector and emits one observation per frame in which a hand was
// found. Frames without a hand emit nothing.
type Source struct {
	camera   Camera
	detector detector.Detector
	motion   *MotionDetector
	gate     *Gate
	fps      int
	logger   *slog.Logger

	enabled atomic.Bool
	frames  atomic.Int64
	emitted atomic.Int64
}

// NewSource creates a producer over camera and detector. It does not open the camera.
func NewSource(cam Camera, det detector.Detector, cfg SourceConfig) *Source {
	fps := cfg.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.With("component", "capture")
	}

	s := &Source{
		camera:   cam,
		detector: det,
		fps:      fps,
		logger:   logger,
	}
	if cfg.MotionThreshold > 0 {
		s.motion = NewMotionDetector(cfg.MotionThreshold)
		s.gate = NewGate(IdleTimeout)
	}
	s.enabled.Store(true)
	return s
}

// SetEnabled pauses or resumes detection without releasing the camera.
func (s *Source) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// Enabled reports whether the source is producing observations.
func (s *Source) Enabled() bool {
	return s.enabled.Load()
}

// Stats returns the number of frames read and observations emitted.
func (s *Source) Stats() (frames, emitted int64) {
	return s.frames.Load(), s.emitted.Load()
}

// Run captures until ctx is cancelled, calling emit for each observation.
// emit is called from the capture goroutine and must not block.
//
// Loop:
//  1. read a frame at the current rate
//  2. with motion gating, switch between IdleFPS and the active rate
//  3. skip detection while idle
//  4. detect hands and emit the most confident one
func (s *Source) Run(ctx context.Context, emit func(detector.Observation)) {
	interval := s.interval(s.gate == nil)
	if s.gate == nil {
		s.camera.SetFPS(s.fps)
	} else {
		s.camera.SetFPS(IdleFPS)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !s.Enabled() {
			continue
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			s.logger.Debug("read frame", "error", err)
			continue
		}
		s.frames.Add(1)

		if s.gate != nil {
			moved, changed := s.motion.Detect(frame)
			active, switched := s.gate.Update(moved, time.Now())
			if switched {
				rate := IdleFPS
				if active {
					rate = s.fps
				}
				s.camera.SetFPS(rate)
				ticker.Reset(s.interval(active))
				s.logger.Info("capture mode changed", "active", active, "fps", rate, "change_pct", changed)
			}
			if !active {
				frame.Close()
				continue
			}
		}

		hands, err := s.detector.Detect(frame)
		frame.Close()
		if err != nil {
			s.logger.Warn("detect hands", "error", err)
			continue
		}

		obs, ok := detector.First(hands)
		if !ok {
			continue
		}
		if err := obs.Validate(); err != nil {
			s.logger.Warn("dropping observation", "error", err)
			continue
		}

		s.emitted.Add(1)
		emit(obs)
	}
}

func (s *Source) interval(active bool) time.Duration {
	if active {
		return time.Second / time.Duration(s.fps)
	}
	return time.Second / time.Duration(IdleFPS)
}

// Close releases the motion detector.
func (s *Source) Close() {
	if s.motion != nil {
		s.motion.Close()
	}
}
