package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ernest-danials/cookture/internal/log"
)

// ManifestFile is the name of the manifest inside each model directory.
const ManifestFile = "model.json"

// Manifest describes an installed gesture model.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Executable  string   `json:"executable"`
	Labels      []string `json:"labels"`
	InputShape  []int    `json:"input_shape"`
}

// Validate checks the required manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.New("manifest name is required")
	}
	if m.Executable == "" {
		return errors.New("manifest executable is required")
	}
	if len(m.Labels) == 0 {
		return errors.New("manifest must list at least one label")
	}
	for _, d := range m.InputShape {
		if d <= 0 {
			return fmt.Errorf("invalid input shape %v", m.InputShape)
		}
	}
	return nil
}

// Model is a discovered model with its manifest and location.
type Model struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Manager discovers installed models. Each subdirectory of the model
// directory holding a model.json is one model.
type Manager struct {
	modelDir string
	models   map[string]*Model
	mu       sync.RWMutex
}

// NewManager creates a Manager over modelDir.
func NewManager(modelDir string) *Manager {
	return &Manager{
		modelDir: modelDir,
		models:   make(map[string]*Model),
	}
}

// Discover rescans the model directory. A missing directory is not an error.
// Unreadable or invalid manifests are skipped with a warning.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.models = make(map[string]*Model)

	info, err := os.Stat(m.modelDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat model dir: %w", err)
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.modelDir)
	if err != nil {
		return fmt.Errorf("read model dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		modelPath := filepath.Join(m.modelDir, entry.Name())
		manifest, err := readManifest(filepath.Join(modelPath, ManifestFile))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			log.Warn("skipping model", "dir", modelPath, "error", err)
			continue
		}

		m.models[manifest.Name] = &Model{
			Manifest:   *manifest,
			Path:       modelPath,
			Executable: filepath.Join(modelPath, manifest.Executable),
		}
	}

	return nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Get returns a model by name.
// Returns ErrModelNotFound if the model does not exist.
func (m *Manager) Get(name string) (*Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	model, ok := m.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return model, nil
}

// List returns all discovered models sorted by name.
func (m *Manager) List() []*Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	models := make([]*Model, 0, len(m.models))
	for _, model := range m.models {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].Manifest.Name < models[j].Manifest.Name
	})
	return models
}

// ModelDir returns the model directory path.
func (m *Manager) ModelDir() string {
	return m.modelDir
}
