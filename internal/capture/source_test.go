package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/log"
)

func runSource(t *testing.T, src *Source, d time.Duration) []detector.Observation {
	t.Helper()

	out := make(chan detector.Observation, 1024)
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan struct{})
	go func() {
		src.Run(ctx, func(obs detector.Observation) {
			select {
			case out <- obs:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d + time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	close(out)

	var got []detector.Observation
	for obs := range out {
		got = append(got, obs)
	}
	return got
}

func TestSource_EmitsDetectedHands(t *testing.T) {
	cam := NewBlankCamera()
	cam.Open()
	defer cam.Close()

	det := detector.NewMockDetector()
	det.SetHands([]detector.Hand{detector.OpenHand()})

	src := NewSource(cam, det, SourceConfig{FPS: 100, Logger: log.Discard()})
	defer src.Close()

	got := runSource(t, src, 200*time.Millisecond)
	if len(got) == 0 {
		t.Fatal("expected observations")
	}
	if len(got[0]) != detector.NumJoints {
		t.Errorf("expected %d joints, got %d", detector.NumJoints, len(got[0]))
	}

	frames, emitted := src.Stats()
	if frames == 0 || emitted != int64(len(got)) {
		t.Errorf("Stats() = (%d, %d), want frames > 0 and emitted %d", frames, emitted, len(got))
	}
	if rates := cam.Rates(); len(rates) == 0 || rates[0] != 100 {
		t.Errorf("expected camera set to 100 fps, got %v", rates)
	}
}

func TestSource_NoHandEmitsNothing(t *testing.T) {
	cam := NewBlankCamera()
	cam.Open()
	defer cam.Close()

	det := detector.NewMockDetector()
	src := NewSource(cam, det, SourceConfig{FPS: 100, Logger: log.Discard()})

	if got := runSource(t, src, 100*time.Millisecond); len(got) != 0 {
		t.Errorf("expected no observations, got %d", len(got))
	}
	if det.Calls() == 0 {
		t.Error("expected detector to be called")
	}
}

func TestSource_DetectorErrorIsSkipped(t *testing.T) {
	cam := NewBlankCamera()
	cam.Open()
	defer cam.Close()

	det := detector.NewMockDetector()
	det.SetError(errors.New("service crashed"))
	src := NewSource(cam, det, SourceConfig{FPS: 100, Logger: log.Discard()})

	if got := runSource(t, src, 100*time.Millisecond); len(got) != 0 {
		t.Errorf("expected no observations, got %d", len(got))
	}
}

func TestSource_Disabled(t *testing.T) {
	cam := NewBlankCamera()
	cam.Open()
	defer cam.Close()

	det := detector.NewMockDetector()
	det.SetHands([]detector.Hand{detector.OpenHand()})

	src := NewSource(cam, det, SourceConfig{FPS: 100, Logger: log.Discard()})
	src.SetEnabled(false)

	if got := runSource(t, src, 100*time.Millisecond); len(got) != 0 {
		t.Errorf("expected no observations while disabled, got %d", len(got))
	}
	if cam.Reads() != 0 {
		t.Errorf("expected no frames read while disabled, got %d", cam.Reads())
	}
}

func TestSource_MotionGateStartsIdle(t *testing.T) {
	cam := NewBlankCamera()
	cam.Open()
	defer cam.Close()

	det := detector.NewMockDetector()
	det.SetHands([]detector.Hand{detector.OpenHand()})

	src := NewSource(cam, det, SourceConfig{FPS: 30, MotionThreshold: 1.0, Logger: log.Discard()})
	defer src.Close()

	// Identical blank frames never trigger motion.
	if got := runSource(t, src, 500*time.Millisecond); len(got) != 0 {
		t.Errorf("expected no observations while idle, got %d", len(got))
	}
	if det.Calls() != 0 {
		t.Errorf("expected detection skipped while idle, got %d calls", det.Calls())
	}
	if rates := cam.Rates(); len(rates) == 0 || rates[0] != IdleFPS {
		t.Errorf("expected camera set to idle rate, got %v", rates)
	}
}
