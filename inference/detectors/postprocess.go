package detectors

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-roadscan/images"
	"github.com/nvr-ai/go-roadscan/inference"
)

// candidate is a decoded anchor that passed the score threshold.
type candidate struct {
	classID int
	score   float32
	box     images.Rect // model input space
	coeffs  []float32
}

// Decoder turns raw YOLOv8-seg outputs into instances.
type Decoder struct {
	Layout         Layout
	ScoreThreshold float32
	NMSThreshold   float32
	MaskThreshold  float32
	MaxDetections  int
}

// NewDecoder builds a Decoder from cfg.
func NewDecoder(cfg Config) Decoder {
	return Decoder{
		Layout:         cfg.Layout(),
		ScoreThreshold: cfg.ScoreThreshold,
		NMSThreshold:   cfg.NMSThreshold,
		MaskThreshold:  cfg.MaskThreshold,
		MaxDetections:  cfg.MaxDetections,
	}
}

// Decode converts the detection head and prototype outputs into instances.
//
// Arguments:
//   - output0: The detection head, [channels, anchors] row-major.
//   - protos: The prototype masks, [coefficients, protoH, protoW] row-major.
//   - imgWidth, imgHeight: The size of the image given to the model, used to
//     express boxes in its coordinates.
//
// Returns:
//   - []inference.Instance: The instances after NMS, highest score first.
//     Masks are ProtoWidth x ProtoHeight and cover the whole image.
//   - error: An error if the buffers do not match the layout.
func (d Decoder) Decode(output0, protos []float32, imgWidth, imgHeight int) ([]inference.Instance, error) {
	l := d.Layout
	if want := l.Channels() * l.NumAnchors; len(output0) < want {
		return nil, errors.Errorf("detection output holds %d floats, needs %d", len(output0), want)
	}
	if want := l.NumCoefficients * l.ProtoSize(); len(protos) < want {
		return nil, errors.Errorf("prototype output holds %d floats, needs %d", len(protos), want)
	}

	candidates := d.candidates(output0)
	if len(candidates) == 0 {
		return nil, nil
	}

	kept := applyNMS(candidates, d.NMSThreshold)
	if d.MaxDetections > 0 && len(kept) > d.MaxDetections {
		kept = kept[:d.MaxDetections]
	}

	masks, err := d.masks(kept, protos)
	if err != nil {
		return nil, err
	}

	sx := float64(imgWidth) / float64(l.InputWidth)
	sy := float64(imgHeight) / float64(l.InputHeight)

	out := make([]inference.Instance, len(kept))
	for i, c := range kept {
		out[i] = inference.Instance{
			ClassID:    c.classID,
			Confidence: c.score,
			Box:        c.box.Scale(sx, sy).Clamp(imgWidth, imgHeight).Rectangle(),
			Mask:       masks[i],
		}
	}
	return out, nil
}

// candidates collects every anchor whose best class score reaches the threshold.
func (d Decoder) candidates(output0 []float32) []candidate {
	l := d.Layout
	n := l.NumAnchors
	var out []candidate

	for a := 0; a < n; a++ {
		classID := 0
		best := float32(-1)
		for c := 0; c < l.NumClasses; c++ {
			if s := output0[(4+c)*n+a]; s > best {
				best = s
				classID = c
			}
		}
		if best < d.ScoreThreshold {
			continue
		}

		coeffs := make([]float32, l.NumCoefficients)
		for k := range coeffs {
			coeffs[k] = output0[(4+l.NumClasses+k)*n+a]
		}

		out = append(out, candidate{
			classID: classID,
			score:   best,
			box:     images.RectFromCenter(output0[a], output0[n+a], output0[2*n+a], output0[3*n+a]),
			coeffs:  coeffs,
		})
	}
	return out
}

// applyNMS performs greedy class-aware Non-Maximum Suppression.
//
// Arguments:
//   - candidates: The decoded anchors in any order.
//   - iouThreshold: IoU above which a lower scoring box of the same class is suppressed.
//
// Returns:
//   - []candidate: The surviving candidates sorted by descending score.
func applyNMS(candidates []candidate, iouThreshold float32) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	used := make([]bool, len(candidates))
	filtered := make([]candidate, 0, len(candidates))

	for i := range candidates {
		if used[i] {
			continue
		}
		anchor := candidates[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < len(candidates); j++ {
			if used[j] || candidates[j].classID != anchor.classID {
				continue
			}
			if images.CalculateIoU(anchor.box, candidates[j].box) > iouThreshold {
				used[j] = true
			}
		}
	}
	return filtered
}

// masks multiplies the kept coefficients with the prototypes and binarizes
// the result inside each instance's box.
func (d Decoder) masks(kept []candidate, protos []float32) ([]*inference.Mask, error) {
	l := d.Layout
	nc, ps := l.NumCoefficients, l.ProtoSize()

	coeffs := make([]float32, 0, len(kept)*nc)
	for _, c := range kept {
		coeffs = append(coeffs, c.coeffs...)
	}

	a := tensor.New(tensor.WithShape(len(kept), nc), tensor.WithBacking(coeffs))
	b := tensor.New(tensor.WithShape(nc, ps), tensor.WithBacking(protos[:nc*ps]))
	prod, err := tensor.MatMul(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "error multiplying mask coefficients")
	}
	logits, ok := prod.Data().([]float32)
	if !ok || len(logits) != len(kept)*ps {
		return nil, errors.New("unexpected mask product layout")
	}

	sx := float64(l.ProtoWidth) / float64(l.InputWidth)
	sy := float64(l.ProtoHeight) / float64(l.InputHeight)

	out := make([]*inference.Mask, len(kept))
	for i, c := range kept {
		m := inference.NewMask(l.ProtoWidth, l.ProtoHeight)
		crop := c.box.Scale(sx, sy).Clamp(l.ProtoWidth, l.ProtoHeight)
		row := logits[i*ps : (i+1)*ps]
		for y := crop.Y1; y < crop.Y2; y++ {
			for x := crop.X1; x < crop.X2; x++ {
				if sigmoid(row[y*l.ProtoWidth+x]) > d.MaskThreshold {
					m.Data[y*l.ProtoWidth+x] = 1
				}
			}
		}
		out[i] = m
	}
	return out, nil
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
