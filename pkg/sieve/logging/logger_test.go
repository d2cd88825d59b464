package logging

import (
	"testing"

	"github.com/ib-77/psieve/pkg/sieve/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "warn"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_EmptyLevelIsInfo(t *testing.T) {
	logger, err := New(config.LogConfig{})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_Development(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	assert.Equal(t, "console", encoding(true))
	assert.Equal(t, "json", encoding(false))
	assert.Equal(t, "timestamp", encoderConfig(false).TimeKey)
}
