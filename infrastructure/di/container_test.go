package di

import (
	"testing"

	"okr-backend/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestProvideLoggerHonorsLogLevel(t *testing.T) {
	logger, err := provideLogger(&config.Config{Environment: "production", LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestProvideLoggerDefaultsWhenLevelUnset(t *testing.T) {
	logger, err := provideLogger(&config.Config{Environment: "development"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestProvideLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := provideLogger(&config.Config{Environment: "development", LogLevel: "noisy"})
	assert.Error(t, err)
}
