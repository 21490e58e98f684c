package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestClassMap(t *testing.T) {
	names := []string{"pothole", "crack"}
	cm := NewClassMap(names)
	names[0] = "mutated"

	assert.Equal(t, "pothole", cm.Label(0), "ClassMap should not alias the caller's slice")
	assert.Equal(t, "crack", cm.Label(1))
	assert.Equal(t, "class_7", cm.Label(7))
	assert.Equal(t, "class_-1", cm.Label(-1))
	assert.Equal(t, 2, cm.Len())

	parsed := ParseClassMap(" pothole, ,crack ")
	assert.Equal(t, 2, parsed.Len())
	assert.Equal(t, "crack", parsed.Label(1))
	assert.Equal(t, []string{"pothole", "crack"}, parsed.Names())
}

func TestMask(t *testing.T) {
	m := NewMask(8, 4)
	require.NoError(t, m.Validate())

	m.FillRect(1, 1, 3, 3)
	m.Set(100, 100)
	assert.Equal(t, 4, m.Count())
	assert.True(t, m.At(2, 2))
	assert.False(t, m.At(0, 0))
	assert.False(t, m.At(-1, 0))

	bad := &Mask{Width: 2, Height: 2, Data: []uint8{1}}
	assert.Error(t, bad.Validate())
	assert.Error(t, (&Mask{}).Validate())
}

func TestDetectorFunc(t *testing.T) {
	var got int
	det := DetectorFunc(func(ctx context.Context, img gocv.Mat) ([]Instance, error) {
		got = img.Cols()
		return []Instance{{ClassID: 0, Confidence: 0.9}}, nil
	})

	img := gocv.NewMatWithSize(5, 7, gocv.MatTypeCV8UC3)
	defer img.Close()

	out, err := det.Infer(context.Background(), img)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 7, got)
}
