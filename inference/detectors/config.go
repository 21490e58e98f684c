// Package detectors - ONNX segmentation models implementing inference.Detector.
package detectors

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-roadscan/inference/providers"
)

// Config describes a YOLOv8-seg style ONNX model and its decoding thresholds.
type Config struct {
	// ModelPath is the location of the .onnx file.
	ModelPath string `json:"model_path"`

	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string `json:"library_path"`

	// Provider selects the execution provider and threading.
	Provider providers.Config `json:"provider"`

	// InputShape defines the model input dimensions (width, height).
	InputShape image.Point `json:"input_shape"`

	// NumClasses is the number of classes the model head predicts.
	NumClasses int `json:"num_classes"`

	// NumMaskCoefficients is the number of mask prototypes (32 for YOLOv8-seg).
	NumMaskCoefficients int `json:"num_mask_coefficients"`

	// ScoreThreshold drops anchors whose best class score is below it.
	ScoreThreshold float32 `json:"score_threshold"`

	// NMSThreshold controls the Non-Maximum Suppression IoU threshold.
	NMSThreshold float32 `json:"nms_threshold"`

	// MaskThreshold binarizes the sigmoid mask probabilities.
	MaskThreshold float32 `json:"mask_threshold"`

	// MaxDetections caps the number of instances kept after NMS.
	MaxDetections int `json:"max_detections"`

	// InputName and OutputNames are the graph tensor names.
	InputName   string    `json:"input_name"`
	OutputNames [2]string `json:"output_names"`
}

// DefaultConfig returns the settings of a single-class 640x640 pothole segmenter.
//
// Returns:
//   - Config: The default configuration. ModelPath must still be set.
//
// @example
// cfg := detectors.DefaultConfig()
// cfg.ModelPath = "models/pothole-seg.onnx"
// seg, err := detectors.NewSegmenter(cfg)
func DefaultConfig() Config {
	return Config{
		Provider:            providers.DefaultConfig(),
		InputShape:          image.Point{X: 640, Y: 640},
		NumClasses:          1,
		NumMaskCoefficients: 32,
		ScoreThreshold:      0.25,
		NMSThreshold:        0.7,
		MaskThreshold:       0.5,
		MaxDetections:       300,
		InputName:           "images",
		OutputNames:         [2]string{"output0", "output1"},
	}
}

// Validate checks the configuration describes a usable model layout.
func (c Config) Validate() error {
	if c.InputShape.X <= 0 || c.InputShape.Y <= 0 || c.InputShape.X%32 != 0 || c.InputShape.Y%32 != 0 {
		return errors.Errorf("input shape %dx%d must be positive multiples of 32", c.InputShape.X, c.InputShape.Y)
	}
	if c.NumClasses < 1 {
		return errors.Errorf("num classes must be at least 1, got %d", c.NumClasses)
	}
	if c.NumMaskCoefficients < 1 {
		return errors.Errorf("num mask coefficients must be at least 1, got %d", c.NumMaskCoefficients)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return errors.Errorf("score threshold %v outside [0,1]", c.ScoreThreshold)
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold > 1 {
		return errors.Errorf("nms threshold %v outside (0,1]", c.NMSThreshold)
	}
	if c.MaskThreshold <= 0 || c.MaskThreshold >= 1 {
		return errors.Errorf("mask threshold %v outside (0,1)", c.MaskThreshold)
	}
	return nil
}

// Layout is the tensor geometry implied by a Config.
type Layout struct {
	InputWidth, InputHeight int
	NumClasses              int
	NumCoefficients         int
	// NumAnchors is the number of predictions across the stride 8, 16 and 32 heads.
	NumAnchors int
	// ProtoWidth and ProtoHeight are the prototype mask dimensions (input / 4).
	ProtoWidth, ProtoHeight int
}

// Layout derives the output tensor geometry from the input shape.
func (c Config) Layout() Layout {
	w, h := c.InputShape.X, c.InputShape.Y
	anchors := 0
	for _, stride := range []int{8, 16, 32} {
		anchors += (w / stride) * (h / stride)
	}
	return Layout{
		InputWidth:      w,
		InputHeight:     h,
		NumClasses:      c.NumClasses,
		NumCoefficients: c.NumMaskCoefficients,
		NumAnchors:      anchors,
		ProtoWidth:      w / 4,
		ProtoHeight:     h / 4,
	}
}

// Channels is the number of rows of the detection output (4 box + classes + coefficients).
func (l Layout) Channels() int {
	return 4 + l.NumClasses + l.NumCoefficients
}

// InputSize is the number of floats of the CHW input tensor.
func (l Layout) InputSize() int {
	return 3 * l.InputWidth * l.InputHeight
}

// ProtoSize is the number of floats per prototype mask.
func (l Layout) ProtoSize() int {
	return l.ProtoWidth * l.ProtoHeight
}
