package pipeline

import (
	"time"

	"github.com/nvr-ai/go-roadscan/stats"
)

// Recorder receives pipeline events, e.g. to export metrics.
// Implementations must be safe for concurrent use when shared across drivers.
type Recorder interface {
	FrameRead()
	FrameSampled()
	FrameFailed()
	DetectionsCounted(n int)
	ObserveInference(d time.Duration)
	RunCompleted(s stats.Summary)
}

type noopRecorder struct{}

func (noopRecorder) FrameRead()                     {}
func (noopRecorder) FrameSampled()                  {}
func (noopRecorder) FrameFailed()                   {}
func (noopRecorder) DetectionsCounted(int)          {}
func (noopRecorder) ObserveInference(time.Duration) {}
func (noopRecorder) RunCompleted(stats.Summary)     {}
