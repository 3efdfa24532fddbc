package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/config"
	"github.com/ernest-danials/cookture/internal/gesture"
	"github.com/ernest-danials/cookture/internal/store"
)

func TestParseFlags(t *testing.T) {
	cfg := config.Default()
	parseFlags(&cfg, []string{
		"-recipe", "pancakes.json",
		"-addr", ":9090",
		"-fps", "15",
		"-motion", "1.5",
		"-policy", "edge",
		"-classify-timeout", "2s",
		"-backpressure",
		"-tray",
	})

	assert.Equal(t, "pancakes.json", cfg.RecipePath)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15, cfg.FPS)
	assert.Equal(t, 1.5, cfg.MotionThreshold)
	assert.Equal(t, "edge", cfg.Policy)
	assert.Equal(t, 2*time.Second, cfg.ClassifyTimeout)
	assert.True(t, cfg.Tray)
	assert.True(t, cfg.Backpressure)
	assert.False(t, cfg.Debug)
}

func TestNewEngine_RestoresSettings(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Settings().SaveThresholds(gesture.Thresholds{Swipe: 0.6, Fist: 0.7}))
	require.NoError(t, st.Settings().SaveCounters(gesture.Counters{SwipeDown: 9}))

	cfg := config.Default()
	cfg.Policy = "edge"
	e, err := newEngine(cfg, st)
	require.NoError(t, err)

	assert.Equal(t, gesture.PolicyEdge, e.Policy())
	assert.Equal(t, gesture.Thresholds{Swipe: 0.6, Fist: 0.7}, e.Thresholds())
	assert.Equal(t, 9, e.Counters().SwipeDown)

	cfg.Policy = "sometimes"
	_, err = newEngine(cfg, st)
	assert.Error(t, err)
}

func TestNewClassifier(t *testing.T) {
	cfg := config.Default()
	cfg.ModelDir = t.TempDir()

	clf, err := newClassifier(cfg)
	require.NoError(t, err)
	assert.IsType(t, &classifier.Heuristic{}, clf, "no models installed")

	modelDir := filepath.Join(cfg.ModelDir, "tiny")
	require.NoError(t, os.MkdirAll(modelDir, 0755))
	manifest := `{"name": "tiny", "version": "0.1.0", "executable": "run.sh", "labels": ["Swipe up"]}`
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, classifier.ManifestFile), []byte(manifest), 0644))

	clf, err = newClassifier(cfg)
	require.NoError(t, err)
	exec, ok := clf.(*classifier.Exec)
	require.True(t, ok, "installed model is preferred")
	assert.Equal(t, "tiny", exec.Model().Manifest.Name)

	cfg.ModelName = "missing"
	_, err = newClassifier(cfg)
	assert.ErrorIs(t, err, classifier.ErrModelNotFound)
}

func TestFindWebDir(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "web"), 0755))

	got := findWebDir(dataDir)
	if _, err := os.Stat("web"); err == nil {
		t.Skip("a relative web directory takes precedence")
	}
	assert.Equal(t, filepath.Join(dataDir, "web"), got)
}
