// Package config loads runtime configuration for cookture from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultFPS             = 30
	DefaultClassifyTimeout = 5 * time.Second
	DefaultPolicy          = "level"
	DefaultLogLevel        = "info"
)

// Config holds every tunable of the hands-free cooking pipeline.
type Config struct {
	Addr            string
	DataDir         string
	RecipePath      string
	ModelDir        string
	ModelName       string
	WebDir          string
	CameraID        int
	FPS             int
	MotionThreshold float64 // percent of changed pixels; 0 disables motion gating
	ClassifyTimeout time.Duration
	Backpressure    bool   // wait for the classifier instead of dropping windows
	Policy          string // "level" or "edge"
	LogLevel        string
	Debug           bool
	Tray            bool
}

// Default returns a Config populated with defaults.
func Default() Config {
	dataDir := ".cookture"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".cookture")
	}

	return Config{
		Addr:            DefaultAddr,
		DataDir:         dataDir,
		ModelDir:        filepath.Join(dataDir, "models"),
		FPS:             DefaultFPS,
		ClassifyTimeout: DefaultClassifyTimeout,
		Policy:          DefaultPolicy,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads an optional .env file and then COOKTURE_* variables over the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Unset variables keep their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("COOKTURE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("COOKTURE_DATA_DIR"); v != "" {
		cfg.DataDir = v
		cfg.ModelDir = filepath.Join(v, "models")
	}
	if v := getenv("COOKTURE_RECIPE"); v != "" {
		cfg.RecipePath = v
	}
	if v := getenv("COOKTURE_MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := getenv("COOKTURE_MODEL"); v != "" {
		cfg.ModelName = v
	}
	if v := getenv("COOKTURE_WEB_DIR"); v != "" {
		cfg.WebDir = v
	}
	if v := getenv("GESTURE_POLICY"); v != "" {
		cfg.Policy = v
	}
	if v := getenv("COOKTURE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.CameraID, err = intEnv(getenv, "COOKTURE_CAMERA", cfg.CameraID); err != nil {
		return cfg, err
	}
	if cfg.FPS, err = intEnv(getenv, "COOKTURE_FPS", cfg.FPS); err != nil {
		return cfg, err
	}
	if v := getenv("COOKTURE_MOTION_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("COOKTURE_MOTION_THRESHOLD: %w", err)
		}
		cfg.MotionThreshold = f
	}
	if v := getenv("COOKTURE_CLASSIFY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKTURE_CLASSIFY_TIMEOUT: %w", err)
		}
		cfg.ClassifyTimeout = d
	}
	if cfg.Backpressure, err = boolEnv(getenv, "COOKTURE_BACKPRESSURE", cfg.Backpressure); err != nil {
		return cfg, err
	}
	if cfg.Debug, err = boolEnv(getenv, "COOKTURE_DEBUG", cfg.Debug); err != nil {
		return cfg, err
	}
	if cfg.Tray, err = boolEnv(getenv, "COOKTURE_TRAY", cfg.Tray); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.RecipePath == "" {
		return errors.New("recipe path is required")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.MotionThreshold < 0 {
		return fmt.Errorf("motion threshold must not be negative, got %v", c.MotionThreshold)
	}
	if c.ClassifyTimeout <= 0 {
		return fmt.Errorf("classify timeout must be positive, got %v", c.ClassifyTimeout)
	}
	if c.Policy != "level" && c.Policy != "edge" {
		return fmt.Errorf("unknown gesture policy %q (want level or edge)", c.Policy)
	}
	return nil
}

// DBPath returns the sqlite database location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "cookture.db")
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
