package images

import (
	"fmt"
	"image"
	"math"
)

// Resolution describes the exact pixel dimensions a frame is resized to before inference.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultTargetResolution is the fixed input resolution applied to every analyzed frame.
var DefaultTargetResolution = Resolution{Width: 1020, Height: 500}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Point returns the resolution as an image.Point, the form gocv.Resize expects.
func (r Resolution) Point() image.Point {
	return image.Pt(r.Width, r.Height)
}

// GetMegaPixels calculates the megapixel value based on the resolution's pixel dimensions.
// It returns the value rounded to two decimal places (e.g., 0.51 for 1020x500).
func (r Resolution) GetMegaPixels() float64 {
	if !r.Valid() {
		return 0.0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d (%.2fMP)", r.Width, r.Height, r.GetMegaPixels())
}
