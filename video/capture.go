package video

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// Capture reads a video file or stream URL through OpenCV.
type Capture struct {
	path   string
	cap    *gocv.VideoCapture
	buf    gocv.Mat
	index  int
	total  int
	done   bool
	closed bool
}

var _ FrameSource = (*Capture)(nil)

// OpenCapture opens a video file or stream.
//
// Arguments:
//   - path: A file path or any URL OpenCV's VideoCapture understands.
//
// Returns:
//   - *Capture: The opened source.
//   - error: A *SourceError if the stream cannot be opened.
func OpenCapture(path string) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, &SourceError{Op: "open", Path: path, Err: err}
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, &SourceError{Op: "open", Path: path, Err: errors.New("stream did not open")}
	}

	return &Capture{
		path:  path,
		cap:   vc,
		buf:   gocv.NewMat(),
		total: int(vc.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// Next decodes the next frame into the shared buffer.
//
// A failed read is the end of the stream unless the container reports more
// than one frame still to come, in which case it is a *SourceError.
func (c *Capture) Next() (Frame, error) {
	if c.done || c.closed {
		return Frame{}, io.EOF
	}

	if ok := c.cap.Read(&c.buf); !ok || c.buf.Empty() {
		c.done = true
		if c.total > 0 && c.index < c.total-1 {
			return Frame{}, &SourceError{
				Op:   "read",
				Path: c.path,
				Err:  errors.Errorf("decode failed at frame %d of %d", c.index+1, c.total),
			}
		}
		return Frame{}, io.EOF
	}

	c.index++
	return Frame{Index: c.index, Mat: c.buf}, nil
}

// FrameCount returns the number of frames reported by the container, or 0 when unknown.
func (c *Capture) FrameCount() int {
	return c.total
}

// FPS returns the frame rate reported by the container.
func (c *Capture) FPS() float64 {
	if c.closed {
		return 0
	}
	return c.cap.Get(gocv.VideoCaptureFPS)
}

// Close releases the decoder and the frame buffer.
func (c *Capture) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Wrap(multierr.Append(c.cap.Close(), c.buf.Close()), "error closing capture")
}
