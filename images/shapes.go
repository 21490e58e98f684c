// Package images - Geometry, resolution and conversion helpers shared by the detectors and the pipeline.
package images

import "image"

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// RectFromCenter builds a Rect from a center point and a size, as emitted by YOLO style heads.
//
// Arguments:
//   - cx, cy: The center of the box.
//   - w, h: The width and height of the box.
//
// Returns:
//   - Rect: The box in corner form, truncated to whole pixels.
func RectFromCenter(cx, cy, w, h float32) Rect {
	return Rect{
		X1: int(cx - w/2),
		Y1: int(cy - h/2),
		X2: int(cx + w/2),
		Y2: int(cy + h/2),
	}
}

// Area returns the area of the rectangle in pixels, or 0 for a degenerate rectangle.
func (r Rect) Area() int {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Scale multiplies every coordinate by the given factors.
//
// Arguments:
//   - sx: Horizontal factor.
//   - sy: Vertical factor.
//
// Returns:
//   - Rect: The scaled rectangle.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{
		X1: int(float64(r.X1) * sx),
		Y1: int(float64(r.Y1) * sy),
		X2: int(float64(r.X2) * sx),
		Y2: int(float64(r.Y2) * sy),
	}
}

// Clamp restricts the rectangle to [0,w)x[0,h).
func (r Rect) Clamp(w, h int) Rect {
	return Rect{
		X1: min(max(r.X1, 0), w),
		Y1: min(max(r.Y1, 0), h),
		X2: min(max(r.X2, 0), w),
		Y2: min(max(r.Y2, 0), h),
	}
}

// Rectangle converts to the standard library representation.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU measures the overlap of two rectangles as
// Area(intersection) / Area(union), a value in [0, 1].
//
// The intersection corners are the max of the top-left corners and the min of
// the bottom-right corners; a non-positive width or height means no overlap.
// The union follows inclusion-exclusion: A + B - intersection.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example:
//
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iou := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return float32(interArea) / float32(unionArea)
}

// PointsBounds returns the smallest rectangle containing every point, with
// exclusive max corner. An empty slice yields the zero rectangle.
func PointsBounds(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	b := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		b = b.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return b
}
