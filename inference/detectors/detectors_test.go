package detectors

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-roadscan/images"
)

func TestDefaultConfigLayout(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	l := cfg.Layout()
	assert.Equal(t, 8400, l.NumAnchors)
	assert.Equal(t, 160, l.ProtoWidth)
	assert.Equal(t, 160, l.ProtoHeight)
	assert.Equal(t, 37, l.Channels())
	assert.Equal(t, 3*640*640, l.InputSize())
	assert.Equal(t, 25600, l.ProtoSize())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd input", func(c *Config) { c.InputShape = image.Point{X: 630, Y: 640} }},
		{"no classes", func(c *Config) { c.NumClasses = 0 }},
		{"no coefficients", func(c *Config) { c.NumMaskCoefficients = 0 }},
		{"score", func(c *Config) { c.ScoreThreshold = 1.5 }},
		{"nms", func(c *Config) { c.NMSThreshold = 0 }},
		{"mask", func(c *Config) { c.MaskThreshold = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewSegmenterRequiresModel(t *testing.T) {
	_, err := NewSegmenter(DefaultConfig())
	assert.Error(t, err)
}

func TestPrepareInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 51, A: 255})
		}
	}

	dst := make([]float32, 3*4*4)
	require.NoError(t, PrepareInput(img, dst, 4, 4))

	for i := 0; i < 16; i++ {
		assert.InDelta(t, 1.0, dst[i], 1e-2)
		assert.InDelta(t, 0.0, dst[16+i], 1e-2)
		assert.InDelta(t, 0.2, dst[32+i], 1e-2)
	}

	assert.Error(t, PrepareInput(img, make([]float32, 10), 4, 4))
}

// tinyDecoder describes a 64x64 model with one class and two prototypes.
func tinyDecoder() Decoder {
	cfg := DefaultConfig()
	cfg.InputShape = image.Point{X: 64, Y: 64}
	cfg.NumMaskCoefficients = 2
	return NewDecoder(cfg)
}

type anchor struct {
	cx, cy, w, h float32
	score        float32
	coeffs       []float32
}

func buildOutputs(l Layout, anchors map[int]anchor, protoValue float32) ([]float32, []float32) {
	n := l.NumAnchors
	out := make([]float32, l.Channels()*n)
	for a, v := range anchors {
		out[a] = v.cx
		out[n+a] = v.cy
		out[2*n+a] = v.w
		out[3*n+a] = v.h
		out[4*n+a] = v.score
		for k, c := range v.coeffs {
			out[(4+l.NumClasses+k)*n+a] = c
		}
	}
	protos := make([]float32, l.NumCoefficients*l.ProtoSize())
	for i := range protos {
		protos[i] = protoValue
	}
	return out, protos
}

func TestDecode(t *testing.T) {
	d := tinyDecoder()
	l := d.Layout
	require.Equal(t, 84, l.NumAnchors)
	require.Equal(t, 16, l.ProtoWidth)

	out, protos := buildOutputs(l, map[int]anchor{
		0:  {cx: 16, cy: 16, w: 16, h: 16, score: 0.9, coeffs: []float32{1, 0}},
		1:  {cx: 17, cy: 16, w: 16, h: 16, score: 0.8, coeffs: []float32{1, 0}},
		2:  {cx: 48, cy: 48, w: 8, h: 8, score: 0.6, coeffs: []float32{0, 1}},
		30: {cx: 30, cy: 30, w: 8, h: 8, score: 0.1, coeffs: []float32{1, 1}},
	}, 5)

	instances, err := d.Decode(out, protos, 128, 128)
	require.NoError(t, err)
	require.Len(t, instances, 2, "overlapping anchor should be suppressed and low score dropped")

	first := instances[0]
	assert.Equal(t, float32(0.9), first.Confidence)
	assert.Equal(t, image.Rect(16, 16, 48, 48), first.Box)
	require.NotNil(t, first.Mask)
	require.NoError(t, first.Mask.Validate())
	assert.Equal(t, 16, first.Mask.Count())
	assert.True(t, first.Mask.At(2, 2))
	assert.False(t, first.Mask.At(6, 6))

	second := instances[1]
	assert.Equal(t, float32(0.6), second.Confidence)
	assert.Equal(t, 4, second.Mask.Count())
	assert.True(t, second.Mask.At(11, 11))
}

func TestDecodeNegativeLogits(t *testing.T) {
	d := tinyDecoder()
	out, protos := buildOutputs(d.Layout, map[int]anchor{
		5: {cx: 32, cy: 32, w: 16, h: 16, score: 0.7, coeffs: []float32{1, 1}},
	}, -5)

	instances, err := d.Decode(out, protos, 64, 64)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, 0, instances[0].Mask.Count())
}

func TestDecodeEmptyAndShortBuffers(t *testing.T) {
	d := tinyDecoder()
	out, protos := buildOutputs(d.Layout, nil, 0)

	instances, err := d.Decode(out, protos, 64, 64)
	require.NoError(t, err)
	assert.Empty(t, instances)

	_, err = d.Decode(out[:10], protos, 64, 64)
	assert.Error(t, err)
	_, err = d.Decode(out, protos[:10], 64, 64)
	assert.Error(t, err)
}

func TestApplyNMSClassAware(t *testing.T) {
	box := images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	kept := applyNMS([]candidate{
		{classID: 0, score: 0.5, box: box},
		{classID: 1, score: 0.9, box: box},
		{classID: 0, score: 0.7, box: box},
	}, 0.5)

	require.Len(t, kept, 2)
	assert.Equal(t, float32(0.9), kept[0].score)
	assert.Equal(t, float32(0.7), kept[1].score)
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-6)
	assert.Greater(t, sigmoid(5), float32(0.99))
	assert.Less(t, sigmoid(-5), float32(0.01))
}
