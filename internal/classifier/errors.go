package classifier

import (
	"errors"
	"fmt"
)

// Sentinel errors for inference failures.
var (
	// ErrUnavailable is returned when the backend cannot be reached or run.
	ErrUnavailable = errors.New("classifier: backend unavailable")

	// ErrShapeMismatch is returned when the input tensor does not match the model.
	ErrShapeMismatch = errors.New("classifier: input shape mismatch")

	// ErrBadResponse is returned when the backend output cannot be interpreted.
	ErrBadResponse = errors.New("classifier: bad response")

	// ErrModelNotFound is returned when a requested model manifest is missing.
	ErrModelNotFound = errors.New("classifier: model not found")
)

// InferenceError wraps a failure with the backend that produced it.
type InferenceError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("classifier [%s]: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *InferenceError) Unwrap() error {
	return e.Err
}

// WrapError wraps err with backend context. It returns nil for a nil error
// and leaves an existing InferenceError untouched.
func WrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InferenceError
	if errors.As(err, &ie) {
		return err
	}
	return &InferenceError{Backend: backend, Err: err}
}
