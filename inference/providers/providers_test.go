package providers

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderBackend
		wantErr bool
	}{
		{"", CPUProviderBackend, false},
		{"cpu", CPUProviderBackend, false},
		{" CUDA ", CUDAProviderBackend, false},
		{"CoreML", CoreMLProviderBackend, false},
		{"openvino", OpenVINOProviderBackend, false},
		{"tpu", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no matching provider backend registered")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSharedLibPath(t *testing.T) {
	assert.Equal(t, "/opt/ort.so", GetSharedLibPath("/opt/ort.so"))

	t.Setenv(LibraryPathEnv, "/env/ort.so")
	assert.Equal(t, "/env/ort.so", GetSharedLibPath(""))

	t.Setenv(LibraryPathEnv, "")
	assert.NotEmpty(t, GetSharedLibPath(""))
}

func TestInitializeEnvironmentMissingLibrary(t *testing.T) {
	err := InitializeEnvironment(filepath.Join(t.TempDir(), "missing.so"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ONNX Runtime library not found")
}

func TestInitializeEnvironmentConcurrent(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "missing.so")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = InitializeEnvironment(lib)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ONNX Runtime library not found")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, CPUProviderBackend, cfg.Backend)
	assert.Equal(t, "CPU", cfg.OpenVINODevice)
}
