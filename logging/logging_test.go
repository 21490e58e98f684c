package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     zapcore.Level
		wantEncoding  string
		wantErr       bool
	}{
		{"", "", zapcore.InfoLevel, "json", false},
		{"DEBUG", "console", zapcore.DebugLevel, "console", false},
		{"warn", "json", zapcore.WarnLevel, "json", false},
		{"loud", "", 0, "", true},
		{"info", "xml", 0, "", true},
	}
	for _, tt := range tests {
		cfg, err := NewConfig(tt.level, tt.format)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.level, tt.format)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.wantLevel, cfg.Level.Level())
		assert.Equal(t, tt.wantEncoding, cfg.Encoding)
		assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
	}
}

func TestNew(t *testing.T) {
	logger, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New("nope", "")
	assert.Error(t, err)
}
