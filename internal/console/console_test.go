package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAutoConfirmAnswersFixedValue(t *testing.T) {
	logger := zap.NewNop().Sugar()
	yes := NewAutoConfirm(logger, true)
	no := NewAutoConfirm(logger, false)

	assert.True(t, yes.Confirm("create? "))
	assert.False(t, no.Confirm("create? "))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("verbose")
	assert.Error(t, err)
}

func TestNewLoggerAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		_, err := NewLogger(level)
		assert.NoError(t, err, level)
	}
}
