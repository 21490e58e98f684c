// Package logging - Construction of the zap loggers used across roadscan.
package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to stderr so stdout stays free for results.
//
// Arguments:
//   - level: debug, info, warn or error. Empty means info.
//   - format: json or console. Empty means json.
//
// Returns:
//   - *zap.Logger: The logger.
//   - error: An error for an unknown level or format.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := NewConfig(level, format)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "error building logger")
	}
	return logger, nil
}

// NewConfig returns the zap configuration behind New.
func NewConfig(level, format string) (zap.Config, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zap.Config{}, errors.Wrapf(err, "invalid log level %q", level)
		}
		lvl = parsed
	}

	encoding := strings.ToLower(format)
	switch encoding {
	case "":
		encoding = "json"
	case "json", "console":
	default:
		return zap.Config{}, errors.Errorf("invalid log format %q", format)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = encoding
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg, nil
}
