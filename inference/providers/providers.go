// Package providers - Execution provider selection for onnxruntime sessions.
package providers

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend represents different ONNX Runtime execution providers.
type ProviderBackend string

const (
	// CPUProviderBackend runs on the default CPU execution provider.
	CPUProviderBackend ProviderBackend = "cpu"
	// CUDAProviderBackend uses NVIDIA CUDA for GPU acceleration.
	CUDAProviderBackend ProviderBackend = "cuda"
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// Backends lists every supported backend.
var Backends = []ProviderBackend{
	CPUProviderBackend,
	CUDAProviderBackend,
	CoreMLProviderBackend,
	OpenVINOProviderBackend,
}

// ParseBackend converts a user supplied name into a ProviderBackend.
//
// Arguments:
//   - name: Case-insensitive backend name. Empty means CPU.
//
// Returns:
//   - ProviderBackend: The matching backend.
//   - error: An error if the name is not a supported backend.
func ParseBackend(name string) (ProviderBackend, error) {
	if name == "" {
		return CPUProviderBackend, nil
	}
	b := ProviderBackend(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", errors.Errorf("no matching provider backend registered: %s", name)
}

// Config selects the execution provider and threading of a session.
type Config struct {
	// Backend specifies the backend to use.
	Backend ProviderBackend `json:"backend" yaml:"backend"`
	// DeviceID is the accelerator index for CUDA.
	DeviceID int `json:"device_id" yaml:"device_id"`
	// OpenVINODevice is the OpenVINO device type, e.g. CPU, GPU.
	OpenVINODevice string `json:"openvino_device" yaml:"openvino_device"`
	// CoreMLFlags is passed unchanged to the CoreML provider.
	CoreMLFlags uint32 `json:"coreml_flags" yaml:"coreml_flags"`
	// IntraOpNumThreads parallelizes execution within graph nodes. 0 uses the runtime default.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads"`
	// InterOpNumThreads parallelizes execution across graph nodes. 0 uses the runtime default.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads"`
}

// DefaultConfig returns a CPU configuration with runtime-chosen threading.
func DefaultConfig() Config {
	return Config{
		Backend:        CPUProviderBackend,
		OpenVINODevice: "CPU",
	}
}

// NewSessionOptions builds onnxruntime session options for the configured backend.
//
// The caller owns the returned options and must Destroy them once the session
// has been created.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: The configured options.
//   - error: An error if the options cannot be created or the provider cannot be appended.
func NewSessionOptions(cfg Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := configure(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configure(options *ort.SessionOptions, cfg Config) error {
	if cfg.IntraOpNumThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.IntraOpNumThreads); err != nil {
			return errors.Wrap(err, "error setting intra-op threads")
		}
	}
	if cfg.InterOpNumThreads > 0 {
		if err := options.SetInterOpNumThreads(cfg.InterOpNumThreads); err != nil {
			return errors.Wrap(err, "error setting inter-op threads")
		}
	}

	switch cfg.Backend {
	case CPUProviderBackend, "":
		return nil
	case CUDAProviderBackend:
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA provider options")
		}
		defer cudaOpts.Destroy()
		if err := cudaOpts.Update(map[string]string{
			"device_id": strconv.Itoa(cfg.DeviceID),
		}); err != nil {
			return errors.Wrap(err, "error updating CUDA provider options")
		}
		if err := options.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	case CoreMLProviderBackend:
		if err := options.AppendExecutionProviderCoreML(cfg.CoreMLFlags); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINOProviderBackend:
		device := cfg.OpenVINODevice
		if device == "" {
			device = "CPU"
		}
		if err := options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_type": device,
		}); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	default:
		return errors.Errorf("no matching provider backend registered: %s", cfg.Backend)
	}
	return nil
}
