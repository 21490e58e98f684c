package pipeline

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-roadscan/inference"
	"github.com/nvr-ai/go-roadscan/segmentation"
	"github.com/nvr-ai/go-roadscan/video"
)

// Observer is called for every sampled frame that was analyzed successfully.
// The frame holds the resized image the detector saw and is only valid during
// the call.
type Observer func(frame video.Frame, instances []segmentation.Instance)

// Option customizes a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver adds an observer. Observers run in registration order.
func WithObserver(obs Observer) Option {
	return func(d *Driver) {
		if obs != nil {
			d.observers = append(d.observers, obs)
		}
	}
}

// WithRecorder sets the event recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithClassMap sets the labels attached to counted instances.
func WithClassMap(classes inference.ClassMap) Option {
	return func(d *Driver) {
		d.extractor.Classes = classes
	}
}

// WithTracerProvider sets the provider spans are started from. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Driver) {
		if tp != nil {
			d.tracer = tp.Tracer(tracerName)
		}
	}
}
