package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
)

func newObserved(t *testing.T) (logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestLogger_Levels(t *testing.T) {
	log, logs := newObserved(t)

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "d", entries[0].Message)
	assert.Equal(t, "i", entries[1].Message)
	assert.Equal(t, "w", entries[2].Message)
	assert.Equal(t, "e", entries[3].Message)
}

func TestLogger_TypedFields(t *testing.T) {
	log, logs := newObserved(t)

	log.Info("prediction done",
		logging.String("solute", "CCO"),
		logging.Int("batch_size", 3),
		logging.Float64("temperature_k", 298.15),
		logging.Bool("cached", true),
		logging.Duration("elapsed", 12*time.Millisecond),
		logging.Err(errors.New("partial failure")),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "CCO", fields["solute"])
	assert.Equal(t, int64(3), fields["batch_size"])
	assert.Equal(t, 298.15, fields["temperature_k"])
	assert.Equal(t, true, fields["cached"])
	assert.Contains(t, fields, "elapsed")
	assert.Equal(t, "partial failure", fields["error"])
}

func TestLogger_ErrNil(t *testing.T) {
	log, logs := newObserved(t)

	log.Warn("odd", logging.Err(nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "<nil>", logs.All()[0].ContextMap()["error"])
}

func TestLogger_With(t *testing.T) {
	log, logs := newObserved(t)

	child := log.With(logging.String("component", "featurizer"))
	child.Info("parsed")
	log.Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "featurizer", entries[0].ContextMap()["component"])
	assert.NotContains(t, entries[1].ContextMap(), "component",
		"With must not mutate the parent logger")
}

func TestLogger_Named(t *testing.T) {
	log, logs := newObserved(t)

	log.Named("http").Named("predict").Info("request")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "http.predict", logs.All()[0].LoggerName)
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := logging.NewLogger(logging.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	log, err := logging.NewLogger(logging.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestSetDefault(t *testing.T) {
	prev := logging.Default()
	defer logging.SetDefault(prev)

	log, logs := newObserved(t)
	logging.SetDefault(log)
	logging.Default().Info("via default")

	require.Equal(t, 1, logs.Len())

	// nil must be ignored, not replace the default.
	logging.SetDefault(nil)
	assert.NotNil(t, logging.Default())
}

func TestNopLogger_DoesNothing(t *testing.T) {
	nop := logging.NewNopLogger()
	nop.Debug("x")
	nop.Info("x", logging.Int("k", 1))
	nop.Warn("x")
	nop.Error("x")
	assert.Equal(t, nop, nop.With(logging.String("a", "b")))
	assert.Equal(t, nop, nop.Named("child"))
}
