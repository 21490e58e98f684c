package detectors

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/inference"
	"github.com/nvr-ai/go-roadscan/inference/providers"
)

// Segmenter runs a YOLOv8-seg ONNX model through onnxruntime.
//
// The input and output tensors are allocated once and reused, so Infer calls
// are serialized. A Segmenter may be shared by several pipelines.
type Segmenter struct {
	mu      sync.Mutex
	cfg     Config
	decoder Decoder
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	boxes   *ort.Tensor[float32]
	protos  *ort.Tensor[float32]
	closed  bool
}

var _ inference.Detector = (*Segmenter)(nil)

// NewSegmenter loads the model described by cfg.
//
// Arguments:
//   - cfg: The model and decoding configuration.
//
// Returns:
//   - *Segmenter: The ready segmenter. Call Close to release native resources.
//   - error: An error if the runtime, the tensors or the session cannot be created.
func NewSegmenter(cfg Config) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid segmenter config")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if err := providers.InitializeEnvironment(providers.GetSharedLibPath(cfg.LibraryPath)); err != nil {
		return nil, err
	}

	s := &Segmenter{cfg: cfg, decoder: NewDecoder(cfg)}
	l := s.decoder.Layout

	var err error
	if s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(l.InputHeight), int64(l.InputWidth))); err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
	if s.boxes, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(l.Channels()), int64(l.NumAnchors))); err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "error creating detection output tensor")
	}
	if s.protos, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(l.NumCoefficients), int64(l.ProtoHeight), int64(l.ProtoWidth))); err != nil {
		s.destroy()
		return nil, errors.Wrap(err, "error creating prototype output tensor")
	}

	options, err := providers.NewSessionOptions(cfg.Provider)
	if err != nil {
		s.destroy()
		return nil, err
	}
	defer options.Destroy()

	s.session, err = ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		cfg.OutputNames[:],
		[]ort.Value{s.input},
		[]ort.Value{s.boxes, s.protos},
		options,
	)
	if err != nil {
		s.destroy()
		return nil, errors.Wrapf(err, "error creating ORT session for %s", cfg.ModelPath)
	}
	return s, nil
}

// Infer segments img and returns instances with boxes in img coordinates.
func (s *Segmenter) Infer(ctx context.Context, img gocv.Mat) ([]inference.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Empty() {
		return nil, errors.New("empty image")
	}

	rgb, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "error converting frame")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("segmenter is closed")
	}

	l := s.decoder.Layout
	if err := PrepareInput(rgb, s.input.GetData(), l.InputWidth, l.InputHeight); err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	return s.decoder.Decode(s.boxes.GetData(), s.protos.GetData(), img.Cols(), img.Rows())
}

// Close releases the session and its tensors. It is safe to call more than once.
func (s *Segmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.destroy()
}

func (s *Segmenter) destroy() error {
	var err error
	if s.session != nil {
		err = multierr.Append(err, s.session.Destroy())
	}
	for _, t := range []*ort.Tensor[float32]{s.input, s.boxes, s.protos} {
		if t != nil {
			err = multierr.Append(err, t.Destroy())
		}
	}
	return err
}
