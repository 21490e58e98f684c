// Package config - Environment driven configuration for the roadscan CLI.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/inference"
	"github.com/nvr-ai/go-roadscan/inference/detectors"
	"github.com/nvr-ai/go-roadscan/inference/providers"
	"github.com/nvr-ai/go-roadscan/pipeline"
	"github.com/nvr-ai/go-roadscan/segmentation"
)

// Config holds every ROADSCAN_* setting. CLI flags override these values.
type Config struct {
	ModelPath   string   `env:"MODEL_PATH"`
	LibraryPath string   `env:"ORT_LIBRARY_PATH"`
	Classes     []string `env:"CLASSES"              envDefault:"pothole"    envSeparator:","`
	Provider    string   `env:"PROVIDER"             envDefault:"cpu"`
	DeviceID    int      `env:"DEVICE_ID"            envDefault:"0"`
	Threads     int      `env:"THREADS"              envDefault:"0"`

	Stride              int     `env:"STRIDE"               envDefault:"3"`
	ConfidenceThreshold float32 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.5"`
	TargetWidth         int     `env:"TARGET_WIDTH"         envDefault:"1020"`
	TargetHeight        int     `env:"TARGET_HEIGHT"        envDefault:"500"`
	CountPolicy         string  `env:"COUNT_POLICY"         envDefault:"contours"`

	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Prefix is prepended to every variable name.
const Prefix = "ROADSCAN_"

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, errors.Wrap(err, "error parsing environment")
	}
	return cfg, nil
}

// Pipeline maps the settings onto a pipeline.Config. The result is validated
// by pipeline.New.
func (c *Config) Pipeline() (pipeline.Config, error) {
	policy, err := segmentation.ParseCountPolicy(c.CountPolicy)
	if err != nil {
		return pipeline.Config{}, &pipeline.ConfigError{Field: "count_policy", Reason: err.Error()}
	}
	return pipeline.Config{
		Stride:              c.Stride,
		ConfidenceThreshold: c.ConfidenceThreshold,
		TargetResolution:    images.Resolution{Width: c.TargetWidth, Height: c.TargetHeight},
		CountPolicy:         policy,
	}, nil
}

// ClassMap returns the configured class labels.
func (c *Config) ClassMap() inference.ClassMap {
	return inference.NewClassMap(c.Classes)
}

// Segmenter maps the settings onto a detectors.Config.
func (c *Config) Segmenter() (detectors.Config, error) {
	backend, err := providers.ParseBackend(c.Provider)
	if err != nil {
		return detectors.Config{}, err
	}

	cfg := detectors.DefaultConfig()
	cfg.ModelPath = c.ModelPath
	cfg.LibraryPath = c.LibraryPath
	cfg.Provider.Backend = backend
	cfg.Provider.DeviceID = c.DeviceID
	cfg.Provider.IntraOpNumThreads = c.Threads
	if n := len(c.Classes); n > 0 {
		cfg.NumClasses = n
	}
	return cfg, nil
}
