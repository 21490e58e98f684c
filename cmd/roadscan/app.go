package main

import (
	"github.com/urfave/cli/v2"

	"github.com/nvr-ai/go-roadscan/config"
	"github.com/nvr-ai/go-roadscan/inference"
)

const (
	flagModel       = "model"
	flagLibrary     = "ort-library"
	flagClasses     = "classes"
	flagStride      = "stride"
	flagConfidence  = "confidence"
	flagWidth       = "width"
	flagHeight      = "height"
	flagPolicy      = "count-policy"
	flagProvider    = "provider"
	flagAnnotate    = "annotate"
	flagMetricsAddr = "metrics-addr"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "roadscan",
		Usage: "count potholes in road videos with a segmentation model",
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "analyze a video file or a directory of frame-<n> images and print the summary as JSON",
				ArgsUsage: "<video|frame-dir>",
				Flags:     detectFlags(),
				Action:    detectAction,
			},
		},
	}
}

func detectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagModel, Aliases: []string{"m"}, Usage: "YOLOv8-seg ONNX model `FILE`"},
		&cli.StringFlag{Name: flagLibrary, Usage: "onnxruntime shared library `PATH`"},
		&cli.StringFlag{Name: flagClasses, Usage: "comma separated class labels in model order"},
		&cli.IntFlag{Name: flagStride, Usage: "analyze every Nth frame"},
		&cli.Float64Flag{Name: flagConfidence, Usage: "count instances whose confidence exceeds this value"},
		&cli.IntFlag{Name: flagWidth, Usage: "width frames are resized to before inference"},
		&cli.IntFlag{Name: flagHeight, Usage: "height frames are resized to before inference"},
		&cli.StringFlag{Name: flagPolicy, Usage: "contours (every mask fragment counts) or instances"},
		&cli.StringFlag{Name: flagProvider, Usage: "execution provider: cpu, cuda, coreml or openvino"},
		&cli.StringFlag{Name: flagAnnotate, Usage: "write annotated analyzed frames to `FILE` (MJPG .avi)"},
		&cli.StringFlag{Name: flagMetricsAddr, Usage: "serve Prometheus metrics on `ADDR`, e.g. :9090"},
		&cli.StringFlag{Name: flagLogLevel, Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: flagLogFormat, Usage: "json or console"},
	}
}

// loadConfig reads ROADSCAN_* variables and applies the flags set on c.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		flagModel:       &cfg.ModelPath,
		flagLibrary:     &cfg.LibraryPath,
		flagPolicy:      &cfg.CountPolicy,
		flagProvider:    &cfg.Provider,
		flagMetricsAddr: &cfg.MetricsAddr,
		flagLogLevel:    &cfg.LogLevel,
		flagLogFormat:   &cfg.LogFormat,
	}
	for name, dst := range stringFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}

	intFlags := map[string]*int{
		flagStride: &cfg.Stride,
		flagWidth:  &cfg.TargetWidth,
		flagHeight: &cfg.TargetHeight,
	}
	for name, dst := range intFlags {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}

	if c.IsSet(flagConfidence) {
		cfg.ConfidenceThreshold = float32(c.Float64(flagConfidence))
	}
	if c.IsSet(flagClasses) {
		cfg.Classes = inference.ParseClassMap(c.String(flagClasses)).Names()
	}
	return cfg, nil
}
