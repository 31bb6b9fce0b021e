package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZap(zap.New(core)).With("session", "abc")

	ctx := context.Background()
	logger.Debug(ctx, "engine call", "op", "curvilinear_make_uniform", "status", "success")
	logger.Warn(ctx, "engine failure", slog.Int("status", 4))
	logger.Info(ctx, "dangling", "key")

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "abc", first["session"])
	assert.Equal(t, "curvilinear_make_uniform", first["op"])
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)

	assert.EqualValues(t, 4, entries[1].ContextMap()["status"])
	assert.Equal(t, "key", entries[2].ContextMap()["!BADKEY"])
}

func TestZapCallerSkipsFacade(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewZap(zap.New(core, zap.AddCaller()))

	logger.Info(context.Background(), "direct")
	logger.With("k", "v").Info(context.Background(), "derived")

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.True(t, e.Caller.Defined, e.Message)
		assert.True(t, strings.HasSuffix(e.Caller.File, "logging_test.go"), "%s logged from %s", e.Message, e.Caller.File)
	}
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	logger.Error(context.Background(), "ignored", "k", "v")
	assert.NotNil(t, logger.With("k", "v"))
}

func TestNewZapLevel(t *testing.T) {
	logger, err := NewZapLevel("warn")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewZapLevel("loud")
	require.Error(t, err)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.With("session", "s1").Info(context.Background(), "created", "projection", "cartesian")

	out := buf.String()
	assert.Contains(t, out, "session=s1")
	assert.Contains(t, out, "projection=cartesian")
}
