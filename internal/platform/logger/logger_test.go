package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).Named("AuthUsecase").With("request_id", "abc")

	log.Info("signup accepted", "email", "a@b.com", "attempt", 2)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "signup accepted", entry.Message)
	assert.Equal(t, "AuthUsecase", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, "a@b.com", fields["email"])
	assert.EqualValues(t, 2, fields["attempt"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewWithCore(core)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown too")

	assert.Equal(t, 2, logs.Len())
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "verbose", Encoding: "json"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
