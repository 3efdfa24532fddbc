package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"slices"
	"time"

	"github.com/ernest-danials/cookture/internal/tensor"
)

const execBackend = "exec"

// DefaultTimeout bounds one model invocation.
const DefaultTimeout = 5 * time.Second

// execRequest is written to the model's stdin.
type execRequest struct {
	Model   string    `json:"model"`
	Version string    `json:"version"`
	Shape   []int     `json:"shape"`
	Data    []float32 `json:"data"`
}

// execResponse is read from the model's stdout.
type execResponse struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
	Error         string             `json:"error,omitempty"`
}

// Exec runs a model executable once per window, exchanging JSON over
// stdin and stdout.
type Exec struct {
	model   *Model
	timeout time.Duration
}

// NewExec creates an Exec classifier for model. A non-positive timeout uses
// DefaultTimeout.
func NewExec(model *Model, timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exec{model: model, timeout: timeout}
}

// Model returns the manifest-backed model this classifier runs.
func (e *Exec) Model() *Model {
	return e.model
}

// Classify sends x to the model and parses its reply.
func (e *Exec) Classify(ctx context.Context, x *tensor.Tensor) (*Result, error) {
	if err := e.checkShape(x); err != nil {
		return nil, WrapError(execBackend, err)
	}

	reqJSON, err := json.Marshal(execRequest{
		Model:   e.model.Manifest.Name,
		Version: e.model.Manifest.Version,
		Shape:   x.Shape.Ints(),
		Data:    x.Data,
	})
	if err != nil {
		return nil, WrapError(execBackend, fmt.Errorf("marshal request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.model.Executable)
	cmd.Dir = e.model.Path
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, WrapError(execBackend, fmt.Errorf("%w: timeout after %s", ErrUnavailable, e.timeout))
	}
	if ctx.Err() != nil {
		return nil, WrapError(execBackend, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err()))
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, WrapError(execBackend, fmt.Errorf("%w: %v, stderr: %s", ErrUnavailable, err, s))
		}
		return nil, WrapError(execBackend, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}

	res, err := parseExecResponse(stdout.Bytes())
	if err != nil {
		return nil, WrapError(execBackend, err)
	}
	return res, nil
}

func (e *Exec) checkShape(x *tensor.Tensor) error {
	if x == nil {
		return fmt.Errorf("%w: nil tensor", ErrShapeMismatch)
	}
	if len(x.Data) != x.Shape.Len() {
		return fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(x.Data), x.Shape)
	}
	if want := e.model.Manifest.InputShape; len(want) > 0 && !slices.Equal(want, x.Shape.Ints()) {
		return fmt.Errorf("%w: model %s expects %v, got %v", ErrShapeMismatch, e.model.Manifest.Name, want, x.Shape.Ints())
	}
	return nil
}

func parseExecResponse(out []byte) (*Result, error) {
	var resp execResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v, stdout: %s", ErrBadResponse, err, out)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: model reported %q", ErrBadResponse, resp.Error)
	}
	if len(resp.Probabilities) == 0 {
		return nil, fmt.Errorf("%w: no probabilities", ErrBadResponse)
	}
	for label, p := range resp.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability %v for %q outside [0, 1]", ErrBadResponse, p, label)
		}
	}
	if resp.Label == "" {
		return fromDistribution(resp.Probabilities)
	}
	return &Result{Label: resp.Label, Probabilities: resp.Probabilities}, nil
}

// Close is a no-op; each window runs a fresh process.
func (e *Exec) Close() error {
	return nil
}
