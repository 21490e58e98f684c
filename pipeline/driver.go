package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/inference"
	"github.com/nvr-ai/go-roadscan/segmentation"
	"github.com/nvr-ai/go-roadscan/stats"
	"github.com/nvr-ai/go-roadscan/video"
)

const tracerName = "github.com/nvr-ai/go-roadscan/pipeline"

// Driver pulls frames from a source, analyzes the sampled ones and aggregates
// the counted instances.
//
// A Driver holds no per-run state, so it can run any number of sources one
// after another or concurrently.
type Driver struct {
	cfg       Config
	det       inference.Detector
	sampler   Sampler
	extractor segmentation.Extractor
	logger    *zap.Logger
	recorder  Recorder
	tracer    trace.Tracer
	observers []Observer
}

// New validates cfg and builds a Driver.
//
// Arguments:
//   - cfg: The run configuration.
//   - det: The detector applied to every sampled frame.
//   - opts: Optional logger, observers, recorder and class labels.
//
// Returns:
//   - *Driver: The driver.
//   - error: A *ConfigError if cfg is invalid or det is nil.
func New(cfg Config, det inference.Detector, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if det == nil {
		return nil, &ConfigError{Field: "detector", Reason: "must not be nil"}
	}
	sampler, err := NewSampler(cfg.Stride)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:     cfg,
		det:     det,
		sampler: sampler,
		extractor: segmentation.Extractor{
			Threshold: cfg.ConfidenceThreshold,
			Classes:   inference.NewClassMap(inference.PotholeClasses),
			Policy:    cfg.CountPolicy,
		},
		logger:   zap.NewNop(),
		recorder: noopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the validated configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Run consumes src until it is exhausted and returns the summary.
//
// src is closed on every return path. A source failure ends the run early
// with a truncated summary and no error. Frames the detector fails on are
// skipped. When ctx is cancelled the partial summary is returned with
// ctx.Err().
//
// Arguments:
//   - ctx: Cancels the run between frames.
//   - src: The frame source. Run takes ownership of it.
//
// Returns:
//   - stats.Summary: The totals of the run.
//   - error: ctx.Err() on cancellation, nil otherwise.
func (d *Driver) Run(ctx context.Context, src video.FrameSource) (stats.Summary, error) {
	if src == nil {
		return stats.Summary{}, &ConfigError{Field: "source", Reason: "must not be nil"}
	}

	runID := uuid.NewString()
	log := d.logger.With(zap.String("run_id", runID))

	ctx, span := d.tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.stride", d.cfg.Stride),
		attribute.String("run.resolution", d.cfg.TargetResolution.String()),
	)

	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("failed to close frame source", zap.Error(err))
		}
	}()

	log.Info("run started",
		zap.Int("stride", d.cfg.Stride),
		zap.Float32("confidence_threshold", d.cfg.ConfidenceThreshold),
		zap.Stringer("resolution", d.cfg.TargetResolution),
		zap.Stringer("count_policy", d.cfg.CountPolicy),
	)

	agg := stats.NewAggregator()
	resized := gocv.NewMat()
	defer resized.Close()

	truncated := false
	frameIndex := 0

	for {
		if err := ctx.Err(); err != nil {
			summary := agg.Finalize(d.cfg.Stride)
			log.Warn("run cancelled", zap.Error(err), zap.Int("frames_seen", summary.FramesSeen))
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			return summary, err
		}

		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("frame source failed, returning partial summary", zap.Error(err), zap.Int("frame", frameIndex+1))
			span.RecordError(err)
			truncated = true
			break
		}

		frameIndex++
		agg.FrameSeen()
		d.recorder.FrameRead()

		if !d.sampler.Accepts(frameIndex) {
			continue
		}
		d.recorder.FrameSampled()

		analyzed := video.Frame{Index: frameIndex, Mat: resized}
		instances, err := d.analyze(ctx, frame.Mat, &analyzed)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			agg.FrameFailed()
			d.recorder.FrameFailed()
			log.Warn("skipping frame", zap.Error(err), zap.Int("frame", frameIndex))
			continue
		}

		agg.FrameAnalyzed()
		agg.Accumulate(instances)
		d.recorder.DetectionsCounted(len(instances))
		if ce := log.Check(zapcore.DebugLevel, "frame analyzed"); ce != nil {
			ce.Write(
				zap.Int("frame", frameIndex),
				zap.Int("detections", len(instances)),
				zap.String("checksum", images.ComputeMatChecksum(analyzed.Mat)),
			)
		}

		for _, obs := range d.observers {
			obs(analyzed, instances)
		}
	}

	summary := agg.Finalize(d.cfg.Stride)
	summary.Truncated = truncated
	d.recorder.RunCompleted(summary)

	span.SetAttributes(
		attribute.Int("run.detection_count", summary.DetectionCount),
		attribute.Int("run.processed_frames", summary.ProcessedFrameCount),
		attribute.Bool("run.truncated", summary.Truncated),
	)
	log.Info("run finished",
		zap.Int("detection_count", summary.DetectionCount),
		zap.Float64("confidence_avg", summary.AverageConfidence),
		zap.Int("processed_frames", summary.ProcessedFrameCount),
		zap.Int("frames_seen", summary.FramesSeen),
		zap.Int("frames_failed", summary.FramesFailed),
		zap.Bool("truncated", summary.Truncated),
	)
	return summary, nil
}

// analyze resizes src into dst.Mat, runs the detector and extracts instances.
func (d *Driver) analyze(ctx context.Context, src gocv.Mat, dst *video.Frame) ([]segmentation.Instance, error) {
	ctx, span := d.tracer.Start(ctx, "pipeline.Infer", trace.WithAttributes(attribute.Int("frame.index", dst.Index)))
	defer span.End()

	fail := func(err error) ([]segmentation.Instance, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "frame skipped")
		return nil, &InferenceError{Frame: dst.Index, Err: err}
	}

	if src.Empty() {
		return fail(errors.New("empty frame"))
	}
	res := d.cfg.TargetResolution
	gocv.Resize(src, &dst.Mat, res.Point(), 0, 0, gocv.InterpolationLinear)
	if dst.Mat.Empty() {
		return fail(errors.New("resize produced an empty frame"))
	}

	start := time.Now()
	detections, err := d.det.Infer(ctx, dst.Mat)
	d.recorder.ObserveInference(time.Since(start))
	if err != nil {
		return fail(err)
	}

	instances, err := d.extractor.ExtractAll(detections, res.Width, res.Height)
	if err != nil {
		return fail(errors.Wrap(err, "mask extraction failed"))
	}
	span.SetAttributes(attribute.Int("frame.detections", len(instances)))
	return instances, nil
}

// ProcessVideo runs a one-shot pipeline over src with det.
//
// src is closed even when cfg is rejected.
//
// Arguments:
//   - ctx: Cancels the run between frames.
//   - src: The frame source.
//   - det: The detector.
//   - cfg: The run configuration.
//   - opts: Optional driver settings.
//
// Returns:
//   - stats.Summary: The totals of the run.
//   - error: A *ConfigError for invalid input, ctx.Err() on cancellation.
//
// @example
// src, _ := video.OpenCapture("road.mp4")
// summary, err := pipeline.ProcessVideo(ctx, src, seg, pipeline.DefaultConfig())
func ProcessVideo(ctx context.Context, src video.FrameSource, det inference.Detector, cfg Config, opts ...Option) (stats.Summary, error) {
	d, err := New(cfg, det, opts...)
	if err != nil {
		if src != nil {
			_ = src.Close()
		}
		return stats.Summary{}, err
	}
	return d.Run(ctx, src)
}
