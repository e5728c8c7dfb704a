package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		debug bool
		warn  bool
	}{
		{name: "debug console", cfg: Config{Level: "debug", Format: "console"}, debug: true, warn: true},
		{name: "info json", cfg: Config{Level: "info", Format: "json"}, debug: false, warn: true},
		{name: "error level", cfg: Config{Level: "error", Format: "json"}, debug: false, warn: false},
		{name: "unknown level falls back to info", cfg: Config{Level: "loud"}, debug: false, warn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.warn, l.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestForRegistry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := ForRegistry(zap.New(core), "sprites")

	l.Info("loaded")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sprites", entry.ContextMap()["registry"])

	assert.NotNil(t, ForRegistry(nil, "sprites"))
}

func TestZapConfig(t *testing.T) {
	zc := zapConfig(&Config{Level: "warn", Format: "console"})
	assert.Equal(t, "console", zc.Encoding)
	assert.True(t, zc.DisableStacktrace)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())

	zc = zapConfig(&Config{Level: "info", Format: "yaml"})
	assert.Equal(t, "json", zc.Encoding)
	assert.Equal(t, "message", zc.EncoderConfig.MessageKey)
}

func TestNew_NilConfig(t *testing.T) {
	l, err := New(nil)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
