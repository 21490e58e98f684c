// Package videotest - Deterministic synthetic frames and a threshold
// segmenter for exercising the pipeline without a model or video files.
package videotest

import (
	"context"
	"image"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/inference"
	"github.com/nvr-ai/go-roadscan/video"
)

// Generator draws road frames: a mid-gray surface with dark filled potholes.
//
// @example
// gen := videotest.NewGenerator(320, 160)
// frame := gen.Frame([]image.Rectangle{image.Rect(10, 10, 40, 30)})
// defer frame.Close()
type Generator struct {
	Width  int
	Height int
}

// NewGenerator creates a generator for frames of the given size.
func NewGenerator(width, height int) *Generator {
	return &Generator{Width: width, Height: height}
}

// Frame renders a BGR frame with one dark rectangle per pothole.
// The caller owns the returned Mat.
func (g *Generator) Frame(potholes []image.Rectangle) gocv.Mat {
	frame := gocv.NewMatWithSize(g.Height, g.Width, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(128, 128, 128, 0))
	for _, r := range potholes {
		gocv.Rectangle(&frame, r, color.RGBA{R: 20, G: 20, B: 20, A: 0}, -1)
	}
	return frame
}

// Source is a video.FrameSource replaying a script of pothole layouts, one
// entry per frame.
type Source struct {
	gen    *Generator
	script [][]image.Rectangle
	pos    int
	buf    gocv.Mat
	// Closes counts calls to Close.
	Closes int
}

var _ video.FrameSource = (*Source)(nil)

// NewSource returns a source yielding len(script) frames.
func NewSource(gen *Generator, script [][]image.Rectangle) *Source {
	return &Source{gen: gen, script: script, buf: gocv.NewMat()}
}

// Next renders the next scripted frame.
func (s *Source) Next() (video.Frame, error) {
	if s.Closes > 0 || s.pos >= len(s.script) {
		return video.Frame{}, io.EOF
	}
	s.buf.Close()
	s.buf = s.gen.Frame(s.script[s.pos])
	s.pos++
	return video.Frame{Index: s.pos, Mat: s.buf}, nil
}

// Close releases the frame buffer.
func (s *Source) Close() error {
	s.Closes++
	if s.Closes > 1 {
		return nil
	}
	return s.buf.Close()
}

// ThresholdDetector segments dark regions of a frame into a single instance
// with the given confidence. Pixels darker than level form the mask.
func ThresholdDetector(level float32, confidence float32) inference.Detector {
	return inference.DetectorFunc(func(ctx context.Context, img gocv.Mat) ([]inference.Instance, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

		binary := gocv.NewMat()
		defer binary.Close()
		gocv.Threshold(gray, &binary, level, 1, gocv.ThresholdBinaryInv)

		mask := &inference.Mask{
			Width:  binary.Cols(),
			Height: binary.Rows(),
			Data:   binary.ToBytes(),
		}
		if mask.Count() == 0 {
			return nil, nil
		}

		contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		defer contours.Close()
		box := image.Rectangle{}
		for i := 0; i < contours.Size(); i++ {
			box = box.Union(gocv.BoundingRect(contours.At(i)))
		}

		return []inference.Instance{{Confidence: confidence, Box: box, Mask: mask}}, nil
	})
}
