package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/rollcall/core"
)

func TestRollbarLogger(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	logger := NewRollbarLogger(zap.New(zcore), core.NewTestConfig())
	defer logger.Close()

	err := errors.New("smtp down")
	logger.Error("sending notification", err, map[string]interface{}{"attendance_id": "att-1"}, 42)
	logger.Info("marked")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "sending notification", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "smtp down", fields["error"])
	assert.Equal(t, "att-1", fields["attendance_id"])
	assert.Equal(t, int64(42), fields["arg2"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].ContextMap())
}
