// Package metrics - Prometheus export of pipeline events.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvr-ai/go-roadscan/stats"
)

// Recorder implements pipeline.Recorder with Prometheus collectors.
type Recorder struct {
	FramesRead        prometheus.Counter
	FramesSampled     prometheus.Counter
	FramesFailed      prometheus.Counter
	Detections        prometheus.Counter
	InferenceDuration prometheus.Histogram
	Runs              *prometheus.CounterVec
	LastConfidenceAvg prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on reg.
//
// Arguments:
//   - reg: The registry, e.g. prometheus.DefaultRegisterer or a fresh
//     prometheus.NewRegistry() in tests.
//
// Returns:
//   - *Recorder: The recorder.
//   - error: An error if a collector is already registered.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadscan_frames_read_total",
			Help: "Total number of frames decoded from sources",
		}),
		FramesSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadscan_frames_sampled_total",
			Help: "Total number of frames selected for analysis",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadscan_frames_failed_total",
			Help: "Total number of sampled frames skipped after an inference error",
		}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roadscan_detections_total",
			Help: "Total number of counted instances",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadscan_inference_duration_seconds",
			Help:    "Duration of a single detector call",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadscan_runs_total",
			Help: "Total number of completed runs, by outcome",
		}, []string{"outcome"}),
		LastConfidenceAvg: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadscan_last_run_confidence_avg",
			Help: "Average confidence of the most recently completed run",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.FramesRead, r.FramesSampled, r.FramesFailed, r.Detections,
		r.InferenceDuration, r.Runs, r.LastConfidenceAvg,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "error registering metric")
		}
	}
	return r, nil
}

// FrameRead counts a decoded frame.
func (r *Recorder) FrameRead() { r.FramesRead.Inc() }

// FrameSampled counts a frame accepted by the sampler.
func (r *Recorder) FrameSampled() { r.FramesSampled.Inc() }

// FrameFailed counts a sampled frame skipped after an inference error.
func (r *Recorder) FrameFailed() { r.FramesFailed.Inc() }

// DetectionsCounted adds the instances counted on one frame.
func (r *Recorder) DetectionsCounted(n int) {
	r.Detections.Add(float64(n))
}

// ObserveInference records the latency of one detector call.
func (r *Recorder) ObserveInference(d time.Duration) {
	r.InferenceDuration.Observe(d.Seconds())
}

// RunCompleted counts the run as "complete" or "truncated".
func (r *Recorder) RunCompleted(s stats.Summary) {
	outcome := "complete"
	if s.Truncated {
		outcome = "truncated"
	}
	r.Runs.WithLabelValues(outcome).Inc()
	r.LastConfidenceAvg.Set(s.AverageConfidence)
}
