// Package inference - The detection capability consumed by the pipeline.
package inference

import (
	"context"
	"image"

	"gocv.io/x/gocv"
)

// Instance is a single candidate object returned by a Detector.
type Instance struct {
	// ClassID is the index of the predicted class.
	ClassID int
	// Confidence is the detector score in [0, 1].
	Confidence float32
	// Box is the bounding box in the coordinates of the image passed to Infer.
	// It is informational only; counting is driven by Mask.
	Box image.Rectangle
	// Mask is the segmentation mask at the model output resolution. Nil for
	// box-only detections.
	Mask *Mask
}

// Detector runs a segmentation model on a single image.
//
// Implementations receive an image already resized to the pipeline's target
// resolution and must not retain it after Infer returns.
type Detector interface {
	Infer(ctx context.Context, img gocv.Mat) ([]Instance, error)
}

// DetectorFunc adapts a plain function to the Detector interface.
type DetectorFunc func(ctx context.Context, img gocv.Mat) ([]Instance, error)

// Infer calls f(ctx, img).
func (f DetectorFunc) Infer(ctx context.Context, img gocv.Mat) ([]Instance, error) {
	return f(ctx, img)
}
