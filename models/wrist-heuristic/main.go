// Package main is a reference gesture model process. It reads one window
// tensor from stdin and writes a label and probability distribution to
// stdout, scoring the window with the built-in heuristic. Install it by
// building the binary next to its model.json in the model directory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ernest-danials/cookture/internal/classifier"
	"github.com/ernest-danials/cookture/internal/tensor"
)

// Request represents the input from the exec classifier.
type Request struct {
	Model   string    `json:"model"`
	Version string    `json:"version"`
	Shape   []int     `json:"shape"`
	Data    []float32 `json:"data"`
}

// Response represents the output to the exec classifier.
type Response struct {
	Label         string             `json:"label,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Error         string             `json:"error,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	x, err := toTensor(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	res, err := classifier.NewHeuristic().Classify(context.Background(), x)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("classify failed: %v", err))
		return
	}

	writeResponse(Response{Label: res.Label, Probabilities: res.Probabilities})
}

// toTensor checks the request shape against its data.
func toTensor(req Request) (*tensor.Tensor, error) {
	if len(req.Shape) != 3 {
		return nil, fmt.Errorf("shape must have 3 dimensions, got %v", req.Shape)
	}

	var shape tensor.Shape
	copy(shape[:], req.Shape)
	if len(req.Data) != shape.Len() {
		return nil, fmt.Errorf("%d values for shape %v", len(req.Data), req.Shape)
	}
	return &tensor.Tensor{Data: req.Data, Shape: shape}, nil
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(msg string) {
	writeResponse(Response{Error: msg})
}
