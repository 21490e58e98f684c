package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/segmentation"
	"github.com/nvr-ai/go-roadscan/video"
	"github.com/nvr-ai/go-roadscan/video/videotest"
)

func roadScript() [][]image.Rectangle {
	two := []image.Rectangle{image.Rect(20, 20, 60, 50), image.Rect(120, 60, 180, 90)}
	one := []image.Rectangle{image.Rect(200, 10, 240, 40)}
	return [][]image.Rectangle{nil, two, two, nil, nil, one, one, two, nil}
}

func TestEndToEndSyntheticRoad(t *testing.T) {
	gen := videotest.NewGenerator(256, 128)
	src := videotest.NewSource(gen, roadScript())

	cfg := DefaultConfig()
	cfg.TargetResolution = images.Resolution{Width: 256, Height: 128}

	var perFrame []int
	summary, err := ProcessVideo(context.Background(), src, videotest.ThresholdDetector(60, 0.9), cfg,
		WithObserver(func(frame video.Frame, instances []segmentation.Instance) {
			perFrame = append(perFrame, len(instances))
		}))
	require.NoError(t, err)

	// Frames 3, 6 and 9 are analyzed.
	assert.Equal(t, []int{2, 1, 0}, perFrame)
	assert.Equal(t, 3, summary.DetectionCount)
	assert.InDelta(t, 0.9, summary.AverageConfidence, 1e-6)
	assert.Equal(t, 3, summary.ProcessedFrameCount)
	assert.Equal(t, 1, src.Closes)
}

func TestEndToEndInstancePolicyAndDownscale(t *testing.T) {
	gen := videotest.NewGenerator(512, 256)
	script := [][]image.Rectangle{nil, nil, {image.Rect(40, 40, 120, 100), image.Rect(240, 120, 360, 180)}}

	cfg := DefaultConfig()
	cfg.TargetResolution = images.Resolution{Width: 256, Height: 128}
	cfg.CountPolicy = segmentation.CountInstances

	summary, err := ProcessVideo(context.Background(), videotest.NewSource(gen, script), videotest.ThresholdDetector(60, 0.7), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DetectionCount)
	assert.Equal(t, 1, summary.ProcessedFrameCount)
}

func TestRunLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	gen := videotest.NewGenerator(64, 32)
	src := videotest.NewSource(gen, make([][]image.Rectangle, 4))
	cfg := DefaultConfig()
	cfg.TargetResolution = images.Resolution{Width: 64, Height: 32}

	_, err := ProcessVideo(context.Background(), src, videotest.ThresholdDetector(60, 0.9), cfg, WithLogger(zap.New(core)))
	require.NoError(t, err)

	finished := logs.FilterMessage("run finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.EqualValues(t, 1, fields["processed_frames"])
	assert.NotEmpty(t, fields["run_id"])
}
