// File path: internal/common/log_test.go
package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerCapturesEntries(t *testing.T) {
	logger := Logger()
	require.NotNil(t, logger)
	require.Same(t, logger, Logger())

	logger.Info("capture check", "component", "test", "count", int64(3))
	entries := LogEntries()
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	require.Equal(t, "capture check", last.Message)
	require.Equal(t, "info", last.Level)
	require.Equal(t, "test", last.Attributes["component"])
	require.Equal(t, int64(3), last.Attributes["count"])
	require.False(t, last.Time.IsZero())
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	Logger().Info("first")
	a := LogEntries()
	Logger().Info("second")
	b := LogEntries()
	require.GreaterOrEqual(t, len(b), len(a))
	if len(a) > 0 {
		a[0].Message = "mutated"
		require.NotEqual(t, "mutated", LogEntries()[0].Message)
	}
}
