package classifier

import (
	"context"
	"sync"

	"github.com/ernest-danials/cookture/internal/tensor"
)

// Mock implements Classifier for testing.
type Mock struct {
	// ClassifyFunc is called when Classify is invoked. When nil, queued
	// results are returned in order and the last one repeats.
	ClassifyFunc func(ctx context.Context, x *tensor.Tensor) (*Result, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu      sync.Mutex
	results []*Result
	calls   int
	closed  bool
}

// NewMock creates a Mock that returns results in order.
func NewMock(results ...*Result) *Mock {
	return &Mock{results: results}
}

// Classify implements Classifier.
func (m *Mock) Classify(ctx context.Context, x *tensor.Tensor) (*Result, error) {
	m.mu.Lock()
	m.calls++
	fn := m.ClassifyFunc
	var res *Result
	if len(m.results) > 0 {
		res = m.results[0]
		if len(m.results) > 1 {
			m.results = m.results[1:]
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, x)
	}
	if res == nil {
		return nil, WrapError("mock", ErrUnavailable)
	}
	return res, nil
}

// Close implements Classifier.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	fn := m.CloseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return nil
}

// Calls returns how many times Classify was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
