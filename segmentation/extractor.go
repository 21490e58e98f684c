// Package segmentation - Converts segmentation masks into counted geometric instances.
package segmentation

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/inference"
)

// CountPolicy decides how many geometric instances a single mask yields.
type CountPolicy int

const (
	// CountContours counts every external contour of a mask, so a pothole whose
	// mask is fragmented into three blobs counts three times.
	CountContours CountPolicy = iota
	// CountInstances keeps only the largest contour, one instance per mask.
	CountInstances
)

// String returns the policy name.
func (p CountPolicy) String() string {
	switch p {
	case CountContours:
		return "contours"
	case CountInstances:
		return "instances"
	}
	return fmt.Sprintf("CountPolicy(%d)", int(p))
}

// ParseCountPolicy converts "contours" or "instances" into a CountPolicy.
func ParseCountPolicy(name string) (CountPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "contours":
		return CountContours, nil
	case "instances":
		return CountInstances, nil
	}
	return 0, errors.Errorf("unknown count policy %q", name)
}

// Instance is one counted object in frame coordinates.
type Instance struct {
	ClassID    int
	Label      string
	Confidence float32
	// Contour is the closed outline of the object.
	Contour []image.Point
}

// Bounds returns the bounding rectangle of the contour.
func (i Instance) Bounds() image.Rectangle {
	return images.PointsBounds(i.Contour)
}

// Extractor turns detector masks into geometric instances.
type Extractor struct {
	// Threshold is the strict lower bound on confidence for a contour to count.
	Threshold float32
	// Classes labels the instances.
	Classes inference.ClassMap
	// Policy selects contour or instance counting.
	Policy CountPolicy
}

// Extract rescales the mask of inst to the frame and returns one instance per
// external contour, or only the largest under CountInstances.
//
// Arguments:
//   - inst: The detector output.
//   - frameWidth, frameHeight: The size of the frame the detector saw.
//
// Returns:
//   - []Instance: The counted instances. Empty when the mask is nil or the
//     confidence does not exceed the threshold.
//   - error: An error if the mask is malformed or the frame size is invalid.
func (e Extractor) Extract(inst inference.Instance, frameWidth, frameHeight int) ([]Instance, error) {
	if inst.Mask == nil || inst.Confidence <= e.Threshold {
		return nil, nil
	}
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, errors.Errorf("invalid frame size %dx%d", frameWidth, frameHeight)
	}
	if err := inst.Mask.Validate(); err != nil {
		return nil, err
	}

	mask, err := images.BinaryMaskToMat(inst.Mask.Data, inst.Mask.Width, inst.Mask.Height)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	src := mask
	if inst.Mask.Width != frameWidth || inst.Mask.Height != frameHeight {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(mask, &scaled, image.Pt(frameWidth, frameHeight), 0, 0, gocv.InterpolationNearestNeighbor)
		if scaled.Empty() {
			return nil, errors.New("mask resize produced an empty image")
		}
		src = scaled
	}

	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	label := e.Classes.Label(inst.ClassID)
	out := make([]Instance, 0, contours.Size())
	for _, pts := range contours.ToPoints() {
		if len(pts) == 0 {
			continue
		}
		out = append(out, Instance{
			ClassID:    inst.ClassID,
			Label:      label,
			Confidence: inst.Confidence,
			Contour:    pts,
		})
	}

	if e.Policy == CountInstances && len(out) > 1 {
		out = []Instance{largest(out)}
	}
	return out, nil
}

// ExtractAll runs Extract over every instance of a frame.
func (e Extractor) ExtractAll(instances []inference.Instance, frameWidth, frameHeight int) ([]Instance, error) {
	var out []Instance
	for i, inst := range instances {
		got, err := e.Extract(inst, frameWidth, frameHeight)
		if err != nil {
			return nil, errors.Wrapf(err, "instance %d", i)
		}
		out = append(out, got...)
	}
	return out, nil
}

// largest returns the instance whose contour encloses the largest area.
func largest(instances []Instance) Instance {
	best, bestArea := 0, -1.0
	for i, inst := range instances {
		pv := gocv.NewPointVectorFromPoints(inst.Contour)
		area := gocv.ContourArea(pv)
		pv.Close()
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	return instances[best]
}
