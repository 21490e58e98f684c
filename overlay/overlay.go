// Package overlay - Draws counted instances onto analyzed frames and writes
// them out as an annotated video.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/segmentation"
	"github.com/nvr-ai/go-roadscan/video"
)

var (
	contourColor = color.RGBA{R: 255, A: 0}
	labelColor   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	bannerColor  = color.RGBA{G: 255, A: 0}
)

// FrameWriter receives annotated frames. *gocv.VideoWriter satisfies it.
type FrameWriter interface {
	Write(img gocv.Mat) error
	Close() error
}

// Draw outlines every instance on img, labels it with its class and
// confidence and prints the frame's total in the top left corner.
func Draw(img *gocv.Mat, instances []segmentation.Instance) {
	for _, inst := range instances {
		if len(inst.Contour) == 0 {
			continue
		}
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{inst.Contour})
		gocv.Polylines(img, pv, true, contourColor, 2)
		pv.Close()

		b := inst.Bounds()
		gocv.PutText(img, fmt.Sprintf("%s %.2f", inst.Label, inst.Confidence),
			image.Pt(b.Min.X, b.Min.Y-10), gocv.FontHersheySimplex, 0.5, labelColor, 2)
	}

	gocv.PutText(img, fmt.Sprintf("Potholes Detected: %d", len(instances)),
		image.Pt(10, 30), gocv.FontHersheySimplex, 1, bannerColor, 2)
}

// Annotator is a pipeline observer that draws on a private copy of each
// analyzed frame and forwards it to a FrameWriter.
//
// The first write error stops further writes and is reported by Err and Close.
type Annotator struct {
	mu     sync.Mutex
	w      FrameWriter
	canvas gocv.Mat
	logger *zap.Logger
	frames int
	err    error
}

// NewAnnotator wraps w. The Annotator owns w and closes it in Close.
func NewAnnotator(w FrameWriter, logger *zap.Logger) *Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{w: w, canvas: gocv.NewMat(), logger: logger}
}

// OpenVideoFile creates an Annotator writing an MJPG video.
//
// Arguments:
//   - path: The output file, usually .avi.
//   - fps: The output frame rate.
//   - res: The frame size, which must match the pipeline's target resolution.
//   - logger: Optional logger.
//
// Returns:
//   - *Annotator: The annotator.
//   - error: An error if the writer cannot be opened.
func OpenVideoFile(path string, fps float64, res images.Resolution, logger *zap.Logger) (*Annotator, error) {
	if !res.Valid() {
		return nil, errors.Errorf("invalid output resolution %dx%d", res.Width, res.Height)
	}
	if fps <= 0 {
		fps = 10
	}
	vw, err := gocv.VideoWriterFile(path, "MJPG", fps, res.Width, res.Height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening video writer %s", path)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, errors.Errorf("video writer %s did not open", path)
	}
	return NewAnnotator(vw, logger), nil
}

// Observe draws instances on a copy of frame and writes it.
// Its signature matches pipeline.Observer.
func (a *Annotator) Observe(frame video.Frame, instances []segmentation.Instance) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return
	}

	frame.Mat.CopyTo(&a.canvas)
	Draw(&a.canvas, instances)

	if err := a.w.Write(a.canvas); err != nil {
		a.err = errors.Wrapf(err, "error writing annotated frame %d", frame.Index)
		a.logger.Error("annotation disabled after write failure", zap.Error(a.err))
		return
	}
	a.frames++
}

// Frames returns the number of frames written.
func (a *Annotator) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Err returns the first write error.
func (a *Annotator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close flushes and closes the writer.
func (a *Annotator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return multierr.Combine(a.err, a.w.Close(), a.canvas.Close())
}
