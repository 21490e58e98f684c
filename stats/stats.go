// Package stats - Running detection totals and the final run summary.
package stats

import "github.com/nvr-ai/go-roadscan/segmentation"

// RunningStats holds the totals of one run.
//
// ConfidenceCount always equals TotalDetectionCount and every counter only
// grows.
type RunningStats struct {
	FramesSeen          int
	FramesAnalyzed      int
	FramesFailed        int
	TotalDetectionCount int
	ConfidenceSum       float64
	ConfidenceCount     int
	PerClass            map[string]int
}

// Summary is the result of a run.
type Summary struct {
	// DetectionCount is the number of counted instances over all analyzed frames.
	DetectionCount int `json:"detection_count"`
	// AverageConfidence is the mean confidence of the counted instances, 0 when none.
	AverageConfidence float64 `json:"confidence_avg"`
	// ProcessedFrameCount is FramesSeen divided by the stride.
	ProcessedFrameCount int `json:"processed_frames"`

	FramesSeen     int            `json:"frames_seen"`
	FramesAnalyzed int            `json:"frames_analyzed"`
	FramesFailed   int            `json:"frames_failed"`
	PerClass       map[string]int `json:"per_class,omitempty"`
	// Truncated is set when the source failed before end of stream.
	Truncated bool `json:"truncated"`
}

// Aggregator accumulates instances into RunningStats. It is not safe for
// concurrent use; each run owns its own.
type Aggregator struct {
	stats RunningStats
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{stats: RunningStats{PerClass: map[string]int{}}}
}

// FrameSeen records a decoded frame.
func (a *Aggregator) FrameSeen() { a.stats.FramesSeen++ }

// FrameAnalyzed records a sampled frame whose detections were accumulated.
func (a *Aggregator) FrameAnalyzed() { a.stats.FramesAnalyzed++ }

// FrameFailed records a sampled frame that was skipped after an error.
func (a *Aggregator) FrameFailed() { a.stats.FramesFailed++ }

// Accumulate adds the instances of one frame to the totals.
func (a *Aggregator) Accumulate(instances []segmentation.Instance) {
	for _, inst := range instances {
		a.stats.TotalDetectionCount++
		a.stats.ConfidenceSum += float64(inst.Confidence)
		a.stats.ConfidenceCount++
		a.stats.PerClass[inst.Label]++
	}
}

// Stats returns a copy of the current totals.
func (a *Aggregator) Stats() RunningStats {
	s := a.stats
	s.PerClass = copyCounts(a.stats.PerClass)
	return s
}

// Finalize builds the Summary. It never panics and may be called more than once.
//
// Arguments:
//   - stride: The sampling stride. Values below 1 are treated as 1.
//
// Returns:
//   - Summary: The run summary.
func (a *Aggregator) Finalize(stride int) Summary {
	if stride < 1 {
		stride = 1
	}
	s := a.stats

	var avg float64
	if s.ConfidenceCount > 0 {
		avg = s.ConfidenceSum / float64(s.ConfidenceCount)
	}

	out := Summary{
		DetectionCount:      s.TotalDetectionCount,
		AverageConfidence:   avg,
		ProcessedFrameCount: s.FramesSeen / stride,
		FramesSeen:          s.FramesSeen,
		FramesAnalyzed:      s.FramesAnalyzed,
		FramesFailed:        s.FramesFailed,
	}
	if len(s.PerClass) > 0 {
		out.PerClass = copyCounts(s.PerClass)
	}
	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
