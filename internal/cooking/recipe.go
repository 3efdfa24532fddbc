// Package cooking holds the recipe model and the hands-free cooking session:
// step navigation, the step timer and the gesture engine behind one owner.
package cooking

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
)

// ErrEmptyRecipe is returned when a recipe has no steps.
var ErrEmptyRecipe = errors.New("recipe has no steps")

// Step is one instruction of a recipe.
type Step struct {
	ID          uuid.UUID `json:"id"`
	Order       int       `json:"order"`
	Instruction string    `json:"instruction"`
	ImageName   *string   `json:"imageName,omitempty"`
	// TimerDuration is in minutes.
	TimerDuration *int `json:"timerDuration,omitempty"`
}

// TimerSeconds returns the step timer length in seconds, if the step has one.
func (s Step) TimerSeconds() (int, bool) {
	if s.TimerDuration == nil || *s.TimerDuration <= 0 {
		return 0, false
	}
	return *s.TimerDuration * 60, true
}

// Recipe is an ordered list of steps.
type Recipe struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Steps []Step    `json:"steps"`
}

// ParseRecipe decodes a recipe. Missing IDs are generated and steps are
// sorted by Order.
func ParseRecipe(data []byte) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if len(r.Steps) == 0 {
		return nil, ErrEmptyRecipe
	}

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for i := range r.Steps {
		if r.Steps[i].ID == uuid.Nil {
			r.Steps[i].ID = uuid.New()
		}
	}
	sort.SliceStable(r.Steps, func(i, j int) bool {
		return r.Steps[i].Order < r.Steps[j].Order
	})

	return &r, nil
}

// LoadRecipe reads a recipe JSON file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	r, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", path, err)
	}
	return r, nil
}
