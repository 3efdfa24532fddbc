package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultFPS, cfg.FPS)
	assert.Equal(t, DefaultClassifyTimeout, cfg.ClassifyTimeout)
	assert.Equal(t, "level", cfg.Policy)
	assert.Zero(t, cfg.MotionThreshold)
	assert.False(t, cfg.Debug)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"COOKTURE_ADDR":             ":9090",
		"COOKTURE_DATA_DIR":         "/tmp/cookture",
		"COOKTURE_RECIPE":           "pancakes.json",
		"COOKTURE_CAMERA":           "1",
		"COOKTURE_FPS":              "15",
		"COOKTURE_MOTION_THRESHOLD": "1.5",
		"COOKTURE_CLASSIFY_TIMEOUT": "750ms",
		"COOKTURE_BACKPRESSURE":     "true",
		"GESTURE_POLICY":            "edge",
		"COOKTURE_DEBUG":            "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/cookture", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/cookture", "models"), cfg.ModelDir)
	assert.Equal(t, filepath.Join("/tmp/cookture", "cookture.db"), cfg.DBPath())
	assert.Equal(t, "pancakes.json", cfg.RecipePath)
	assert.Equal(t, 1, cfg.CameraID)
	assert.Equal(t, 15, cfg.FPS)
	assert.Equal(t, 1.5, cfg.MotionThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.ClassifyTimeout)
	assert.True(t, cfg.Backpressure)
	assert.Equal(t, "edge", cfg.Policy)
	assert.True(t, cfg.Debug)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_BadValues(t *testing.T) {
	for _, key := range []string{"COOKTURE_FPS", "COOKTURE_CAMERA", "COOKTURE_MOTION_THRESHOLD", "COOKTURE_CLASSIFY_TIMEOUT", "COOKTURE_DEBUG"} {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{key: "nope"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.RecipePath = "recipe.json"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing recipe", func(c *Config) { c.RecipePath = "" }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"negative motion", func(c *Config) { c.MotionThreshold = -1 }},
		{"zero timeout", func(c *Config) { c.ClassifyTimeout = 0 }},
		{"unknown policy", func(c *Config) { c.Policy = "sometimes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
