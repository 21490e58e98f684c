package segmentation

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-roadscan/inference"
)

func threeBlobs() *inference.Mask {
	m := inference.NewMask(40, 20)
	m.FillRect(2, 2, 6, 6)
	m.FillRect(12, 4, 20, 10)
	m.FillRect(28, 10, 38, 18)
	return m
}

func TestExtractCountsEveryContour(t *testing.T) {
	e := Extractor{Threshold: 0.5, Classes: inference.NewClassMap(inference.PotholeClasses)}
	got, err := e.Extract(inference.Instance{ClassID: 0, Confidence: 0.8, Mask: threeBlobs()}, 40, 20)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, inst := range got {
		assert.Equal(t, "pothole", inst.Label)
		assert.Equal(t, float32(0.8), inst.Confidence)
		assert.NotEmpty(t, inst.Contour)
	}
}

func TestExtractRescalesMask(t *testing.T) {
	m := inference.NewMask(16, 16)
	m.FillRect(4, 4, 8, 8)

	e := Extractor{Threshold: 0.5}
	got, err := e.Extract(inference.Instance{Confidence: 0.9, Mask: m}, 160, 80)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, image.Rect(40, 20, 80, 40), got[0].Bounds())
	assert.Equal(t, "class_0", got[0].Label)
}

func TestExtractThresholdIsStrict(t *testing.T) {
	e := Extractor{Threshold: 0.5}
	mask := threeBlobs()

	tests := []struct {
		conf float32
		want int
	}{
		{0.5, 0},
		{0.49, 0},
		{0.51, 3},
	}
	for _, tt := range tests {
		got, err := e.Extract(inference.Instance{Confidence: tt.conf, Mask: mask}, 40, 20)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "confidence %v", tt.conf)
	}
}

func TestExtractNilAndEmptyMask(t *testing.T) {
	e := Extractor{Threshold: 0.1}

	got, err := e.Extract(inference.Instance{Confidence: 0.9}, 40, 20)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.Extract(inference.Instance{Confidence: 0.9, Mask: inference.NewMask(10, 10)}, 40, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractMalformedMask(t *testing.T) {
	e := Extractor{}
	_, err := e.Extract(inference.Instance{Confidence: 0.9, Mask: &inference.Mask{Width: 4, Height: 4, Data: []uint8{1}}}, 4, 4)
	assert.Error(t, err)

	_, err = e.Extract(inference.Instance{Confidence: 0.9, Mask: threeBlobs()}, 0, 10)
	assert.Error(t, err)
}

func TestExtractCountInstancesKeepsLargest(t *testing.T) {
	e := Extractor{Threshold: 0.5, Policy: CountInstances}
	got, err := e.Extract(inference.Instance{Confidence: 0.7, Mask: threeBlobs()}, 40, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, image.Rect(28, 10, 38, 18), got[0].Bounds())
}

func TestExtractAll(t *testing.T) {
	e := Extractor{Threshold: 0.5}
	single := inference.NewMask(40, 20)
	single.FillRect(0, 0, 5, 5)

	got, err := e.ExtractAll([]inference.Instance{
		{Confidence: 0.9, Mask: threeBlobs()},
		{Confidence: 0.3, Mask: single},
		{Confidence: 0.6, Mask: single},
		{Confidence: 0.9},
	}, 40, 20)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestParseCountPolicy(t *testing.T) {
	p, err := ParseCountPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CountContours, p)

	p, err = ParseCountPolicy("Instances")
	require.NoError(t, err)
	assert.Equal(t, CountInstances, p)
	assert.Equal(t, "instances", p.String())

	_, err = ParseCountPolicy("blobs")
	assert.Error(t, err)
}
