package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-roadscan/config"
	"github.com/nvr-ai/go-roadscan/inference/detectors"
	"github.com/nvr-ai/go-roadscan/logging"
	"github.com/nvr-ai/go-roadscan/metrics"
	"github.com/nvr-ai/go-roadscan/overlay"
	"github.com/nvr-ai/go-roadscan/pipeline"
	"github.com/nvr-ai/go-roadscan/stats"
	"github.com/nvr-ai/go-roadscan/video"
)

func detectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("detect needs exactly one <video|frame-dir> argument")
	}
	input := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	pcfg, err := cfg.Pipeline()
	if err != nil {
		return err
	}
	if err := pcfg.Validate(); err != nil {
		return err
	}
	scfg, err := cfg.Segmenter()
	if err != nil {
		return err
	}
	if scfg.ModelPath == "" {
		return errors.Errorf("no model given, set --%s or ROADSCAN_MODEL_PATH", flagModel)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runDetect(ctx, input, cfg, pcfg, scfg, c.String(flagAnnotate), logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(summary); encErr != nil {
		return errors.Wrap(encErr, "error writing summary")
	}
	return err
}

func runDetect(
	ctx context.Context,
	input string,
	cfg *config.Config,
	pcfg pipeline.Config,
	scfg detectors.Config,
	annotatePath string,
	logger *zap.Logger,
) (stats.Summary, error) {
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithClassMap(cfg.ClassMap()),
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return stats.Summary{}, err
		}
		opts = append(opts, pipeline.WithRecorder(rec))

		srv := metrics.StartServer(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	seg, err := detectors.NewSegmenter(scfg)
	if err != nil {
		return stats.Summary{}, err
	}
	defer func() {
		if err := seg.Close(); err != nil {
			logger.Warn("failed to release segmenter", zap.Error(err))
		}
	}()

	src, fps, err := openSource(input)
	if err != nil {
		return stats.Summary{}, err
	}

	if annotatePath != "" {
		ann, err := overlay.OpenVideoFile(annotatePath, fps/float64(pcfg.Stride), pcfg.TargetResolution, logger)
		if err != nil {
			_ = src.Close()
			return stats.Summary{}, err
		}
		defer func() {
			if err := ann.Close(); err != nil {
				logger.Warn("annotated video incomplete", zap.Error(err))
			}
		}()
		opts = append(opts, pipeline.WithObserver(ann.Observe))
	}

	logger.Info("analyzing", zap.String("input", input), zap.String("model", scfg.ModelPath))
	return pipeline.ProcessVideo(ctx, src, seg, pcfg, opts...)
}

// openSource opens a frame directory as a Sequence and anything else as a
// Capture. The returned frame rate is 0 when unknown.
func openSource(input string) (video.FrameSource, float64, error) {
	info, err := os.Stat(input)
	if err == nil && info.IsDir() {
		seq, err := video.OpenSequence(input)
		if err != nil {
			return nil, 0, err
		}
		return seq, 0, nil
	}

	capture, err := video.OpenCapture(input)
	if err != nil {
		return nil, 0, err
	}
	return capture, capture.FPS(), nil
}
