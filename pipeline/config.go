// Package pipeline - Samples frames from a video source, runs segmentation on
// them and aggregates the counted instances into a summary.
package pipeline

import (
	"fmt"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/segmentation"
)

// Config controls one pipeline run.
type Config struct {
	// Stride analyzes every Stride-th frame of the 1-based frame counter.
	Stride int `json:"stride"`
	// ConfidenceThreshold is the strict lower bound for an instance to count.
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	// TargetResolution is the size every analyzed frame is resized to.
	TargetResolution images.Resolution `json:"target_resolution"`
	// CountPolicy selects contour or instance counting.
	CountPolicy segmentation.CountPolicy `json:"count_policy"`
}

// DefaultConfig returns stride 3, threshold 0.5, 1020x500 and contour counting.
func DefaultConfig() Config {
	return Config{
		Stride:              3,
		ConfidenceThreshold: 0.5,
		TargetResolution:    images.DefaultTargetResolution,
		CountPolicy:         segmentation.CountContours,
	}
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	if c.Stride < 1 {
		return &ConfigError{Field: "stride", Reason: fmt.Sprintf("must be >= 1, got %d", c.Stride)}
	}
	if !(c.ConfidenceThreshold >= 0 && c.ConfidenceThreshold <= 1) {
		return &ConfigError{Field: "confidence_threshold", Reason: fmt.Sprintf("must be in [0,1], got %v", c.ConfidenceThreshold)}
	}
	if !c.TargetResolution.Valid() {
		return &ConfigError{Field: "target_resolution", Reason: fmt.Sprintf("must be positive, got %dx%d", c.TargetResolution.Width, c.TargetResolution.Height)}
	}
	switch c.CountPolicy {
	case segmentation.CountContours, segmentation.CountInstances:
	default:
		return &ConfigError{Field: "count_policy", Reason: fmt.Sprintf("unknown policy %d", int(c.CountPolicy))}
	}
	return nil
}
