// Package video - Frame sources feeding the detection pipeline.
//
// A FrameSource is lazy, finite and not restartable. Next returns io.EOF once
// the stream is exhausted and keeps returning it afterwards.
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Frame is one decoded frame.
type Frame struct {
	// Index is the 1-based position of the frame in the stream.
	Index int
	// Mat is the BGR pixel data. It is owned by the source and only valid
	// until the next call to Next or Close.
	Mat gocv.Mat
}

// Width returns the frame width in pixels.
func (f Frame) Width() int {
	return f.Mat.Cols()
}

// Height returns the frame height in pixels.
func (f Frame) Height() int {
	return f.Mat.Rows()
}

// FrameSource yields decoded frames in order.
type FrameSource interface {
	// Next returns the next frame, io.EOF at end of stream, or a *SourceError.
	Next() (Frame, error)
	// Close releases the underlying decoder. It is safe to call more than once.
	Close() error
}

// SourceError reports a stream that could not be opened or failed mid-stream.
type SourceError struct {
	// Op is the failing operation, e.g. "open" or "read".
	Op string
	// Path identifies the stream.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("video %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SourceError) Unwrap() error { return e.Err }

// Cause returns the underlying cause for github.com/pkg/errors.
func (e *SourceError) Cause() error { return e.Err }
