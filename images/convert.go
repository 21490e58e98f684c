package images

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ImageToMat converts a decoded image.Image into a 3 channel BGR gocv.Mat.
//
// Arguments:
//   - img: The decoded image.
//
// Returns:
//   - gocv.Mat: A new Mat owned by the caller.
//   - error: An error if the image is nil or cannot be converted.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), errors.New("input image is nil")
	}
	if img.Bounds().Empty() {
		return gocv.NewMat(), errors.New("input image has no pixels")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to convert image to Mat")
	}
	return mat, nil
}

// BinaryMaskToMat copies a row-major 0/1 mask into a single channel 8-bit Mat.
//
// Arguments:
//   - data: Mask values, len(data) must equal width*height.
//   - width: Mask width.
//   - height: Mask height.
//
// Returns:
//   - gocv.Mat: A new Mat owned by the caller.
//   - error: An error if the buffer does not match the dimensions.
func BinaryMaskToMat(data []uint8, width, height int) (gocv.Mat, error) {
	if width <= 0 || height <= 0 {
		return gocv.NewMat(), errors.Errorf("invalid mask dimensions: width=%d, height=%d", width, height)
	}
	if len(data) != width*height {
		return gocv.NewMat(), errors.Errorf("mask buffer holds %d values, needs %d", len(data), width*height)
	}

	view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to wrap mask buffer")
	}
	defer view.Close()

	// The view aliases Go memory; clone so the Mat outlives the slice.
	return view.Clone(), nil
}
