package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/multiclouddemo/message-pipeline/internal/logging"
)

func TestNew_Level(t *testing.T) {
	logger, err := logging.New("warn", "consumer")
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New("verbose", "consumer")
	assert.Error(t, err)
}
