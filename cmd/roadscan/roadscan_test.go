package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nvr-ai/go-roadscan/config"
	"github.com/nvr-ai/go-roadscan/video"
)

// captureConfig runs the detect flags through a throwaway app and returns the merged config.
func captureConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	var got *config.Config
	app := &cli.App{
		Name: "roadscan",
		Commands: []*cli.Command{{
			Name:  "detect",
			Flags: detectFlags(),
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				got = cfg
				return err
			},
		}},
	}
	require.NoError(t, app.Run(append([]string{"roadscan", "detect"}, args...)))
	return got
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("ROADSCAN_STRIDE", "5")
	t.Setenv("ROADSCAN_PROVIDER", "coreml")

	cfg := captureConfig(t, "--stride", "2", "--confidence", "0.4", "--classes", "pothole, crack", "--width", "640", "in.mp4")
	assert.Equal(t, 2, cfg.Stride)
	assert.InDelta(t, 0.4, cfg.ConfidenceThreshold, 1e-6)
	assert.Equal(t, []string{"pothole", "crack"}, cfg.Classes)
	assert.Equal(t, 640, cfg.TargetWidth)
	assert.Equal(t, 500, cfg.TargetHeight)
	assert.Equal(t, "coreml", cfg.Provider, "unset flags keep the environment value")
}

func TestDetectRequiresInputAndModel(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"roadscan", "detect"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument")

	err = app.Run([]string{"roadscan", "detect", "clip.mp4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model")

	err = app.Run([]string{"roadscan", "detect", "--stride", "0", "--model", "m.onnx", "clip.mp4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stride")
	assert.Empty(t, out.String())
}

func TestOpenSource(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-1.png"), buf.Bytes(), 0o600))

	src, fps, err := openSource(dir)
	require.NoError(t, err)
	defer src.Close()
	assert.IsType(t, &video.Sequence{}, src)
	assert.Zero(t, fps)

	_, _, err = openSource(filepath.Join(dir, "missing.mp4"))
	var srcErr *video.SourceError
	assert.ErrorAs(t, err, &srcErr)
}
