package loggingtest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger creates a logger for tests that outputs to t.Logf at debug
// level, named like the process logger in cmd/waiter.
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)).Named("waiter")
}
