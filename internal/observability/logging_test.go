package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/pogodata/internal/config"
)

func TestLoggerConfig_JSONDisablesSampling(t *testing.T) {
	zapCfg, err := loggerConfig(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Nil(t, zapCfg.Sampling)
	assert.Equal(t, "json", zapCfg.Encoding)
	assert.Equal(t, zapcore.WarnLevel, zapCfg.Level.Level())
}

func TestLoggerConfig_Console(t *testing.T) {
	zapCfg, err := loggerConfig(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, "console", zapCfg.Encoding)
	assert.True(t, zapCfg.Development)
	assert.Equal(t, zapcore.DebugLevel, zapCfg.Level.Level())
}

func TestNewLogger_Rejects(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "trace", Format: "json"},
		{Level: "info", Format: "xml"},
	} {
		_, err := NewLogger(cfg, "catalogd")
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestNewLogger_TagsService(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, "catalogd",
		zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }),
	)
	require.NoError(t, err)

	logger.Info("snapshot published", zap.Int("creatures", 3))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "catalogd", fields["service"])
	assert.Equal(t, int64(3), fields["creatures"])
}

func TestNewLogger_NoServiceField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, "",
		zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }),
	)
	require.NoError(t, err)

	logger.Debug("fetching")
	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "service")
}
