package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ernest-danials/cookture/internal/app"
	"github.com/ernest-danials/cookture/internal/capture"
	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/config"
	"github.com/ernest-danials/cookture/internal/cooking"
	"github.com/ernest-danials/cookture/internal/detector"
	"github.com/ernest-danials/cookture/internal/gesture"
	"github.com/ernest-danials/cookture/internal/log"
	"github.com/ernest-danials/cookture/internal/server"
	"github.com/ernest-danials/cookture/internal/store"
	"github.com/ernest-danials/cookture/internal/tray"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	parseFlags(&cfg, os.Args[1:])

	log.Init(cfg.LogLevel)
	if err := run(cfg); err != nil {
		log.Error("cookture failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags overrides cfg with command line flags.
func parseFlags(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("cookture", flag.ExitOnError)
	fs.StringVar(&cfg.RecipePath, "recipe", cfg.RecipePath, "recipe JSON file to cook")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "data directory for the settings database")
	fs.StringVar(&cfg.ModelDir, "model-dir", cfg.ModelDir, "directory of installed gesture models")
	fs.StringVar(&cfg.ModelName, "model", cfg.ModelName, "model to use (default: first installed, else heuristic)")
	fs.StringVar(&cfg.WebDir, "web", cfg.WebDir, "static web UI directory")
	fs.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device ID")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "capture frame rate")
	fs.Float64Var(&cfg.MotionThreshold, "motion", cfg.MotionThreshold, "motion gate threshold in percent (0 disables)")
	fs.DurationVar(&cfg.ClassifyTimeout, "classify-timeout", cfg.ClassifyTimeout, "per-window classifier timeout")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "gesture trigger policy: level or edge")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Backpressure, "backpressure", cfg.Backpressure, "wait for the classifier instead of dropping windows")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "panic on pipeline invariant violations")
	fs.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray menu")
	fs.Parse(args)
}

func run(cfg config.Config) error {
	if cfg.WebDir == "" {
		cfg.WebDir = findWebDir(cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	recipe, err := cooking.LoadRecipe(cfg.RecipePath)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, st)
	if err != nil {
		return err
	}

	session, err := cooking.NewSession(recipe,
		cooking.WithEngine(engine),
		cooking.WithPreferences(st.Preferences()),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	clf, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	pipeline, err := app.New(app.Config{
		Camera:          capture.NewCamera(cfg.CameraID, capture.WithFPS(cfg.FPS)),
		Detector:        newDetector(),
		Classifier:      clf,
		Session:         session,
		FPS:             cfg.FPS,
		MotionThreshold: cfg.MotionThreshold,
		ClassifyTimeout: cfg.ClassifyTimeout,
		Backpressure:    cfg.Backpressure,
		Debug:           cfg.Debug,
	})
	if err != nil {
		return err
	}
	defer pipeline.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without a camera the session is still usable from the web UI.
	if err := pipeline.Start(ctx); err != nil {
		log.Error("hands-free pipeline unavailable", "error", err)
	}

	log.Info("cooking",
		"recipe", recipe.Name,
		"steps", len(recipe.Steps),
		"policy", engine.Policy().String(),
		"web", cfg.WebDir,
	)

	srv := server.New(server.Config{
		StaticDir: cfg.WebDir,
		Session:   session,
		Store:     st,
		Pipeline:  pipeline,
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx, cfg.Addr)
	}()

	if cfg.Tray {
		t := newTray(cfg, session, pipeline, stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	}
	return nil
}

// newEngine restores thresholds and counters saved by earlier runs.
func newEngine(cfg config.Config, st *store.Store) (*gesture.Engine, error) {
	policy, err := gesture.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	thresholds, err := st.Settings().Thresholds()
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	counters, err := st.Settings().Counters()
	if err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}

	return gesture.NewEngine(
		gesture.WithPolicy(policy),
		gesture.WithThresholds(thresholds),
		gesture.WithCounters(counters),
	), nil
}

// newClassifier picks the named model, else the first installed model,
// else the built-in heuristic.
func newClassifier(cfg config.Config) (classifier.Classifier, error) {
	mgr := classifier.NewManager(cfg.ModelDir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("discover models: %w", err)
	}

	if cfg.ModelName != "" {
		model, err := mgr.Get(cfg.ModelName)
		if err != nil {
			return nil, err
		}
		log.Info("using gesture model", "model", model.Manifest.Name, "version", model.Manifest.Version)
		return classifier.NewExec(model, cfg.ClassifyTimeout), nil
	}

	if models := mgr.List(); len(models) > 0 {
		model := models[0]
		log.Info("using gesture model", "model", model.Manifest.Name, "version", model.Manifest.Version)
		return classifier.NewExec(model, cfg.ClassifyTimeout), nil
	}

	log.Info("no gesture model installed, using heuristic classifier", "model_dir", cfg.ModelDir)
	return classifier.NewHeuristic(), nil
}

// newDetector tries MediaPipe first and falls back to the mock detector.
func newDetector() detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		return detector.NewMockDetector()
	}
	log.Info("using MediaPipe hand detection")
	return mp
}

func newTray(cfg config.Config, session *cooking.Session, pipeline *app.App, quit func()) *tray.Tray {
	t := tray.New()
	t.OnToggle(pipeline.SetEnabled)
	t.OnNext(func() { session.Advance() })
	t.OnPrev(func() { session.Retreat() })
	t.OnTimer(func() { session.ToggleTimer() })
	t.OnSettings(func() { openBrowser("http://localhost" + cfg.Addr) })
	t.OnQuit(quit)

	states, _ := session.Subscribe()
	go t.Watch(states)
	return t
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("open browser", "url", url, "error", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}
