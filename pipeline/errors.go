package pipeline

import "fmt"

// ConfigError is returned before any frame is read when the configuration is unusable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid pipeline config: %s %s", e.Field, e.Reason)
}

// InferenceError wraps a failure to analyze one sampled frame. The frame is
// skipped and the run continues.
type InferenceError struct {
	// Frame is the 1-based index of the skipped frame.
	Frame int
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed on frame %d: %v", e.Frame, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InferenceError) Unwrap() error { return e.Err }

// Cause returns the underlying cause for github.com/pkg/errors.
func (e *InferenceError) Cause() error { return e.Err }
