package meshkernel_test

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/logging"
)

func counter(s tally.Snapshot, name string, tags map[string]string) int64 {
	for _, c := range s.Counters() {
		if c.Name() == name && maps.Equal(c.Tags(), tags) {
			return c.Value()
		}
	}
	return 0
}

func gauge(s tally.Snapshot, name string) (float64, bool) {
	for _, g := range s.Gauges() {
		if g.Name() == name {
			return g.Value(), true
		}
	}
	return 0, false
}

func TestEngineCallMetrics(t *testing.T) {
	scope := tally.NewTestScope("test", nil)
	m, e := newManager(t, meshkernel.WithMetrics(scope))
	s := newSession(t, m)
	other := newSession(t, m)

	active, ok := gauge(scope.Snapshot(), "test.meshkernel.sessions_active")
	require.True(t, ok)
	assert.Equal(t, 2.0, active)

	with(t, s, func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dCountHangingEdges()
		return err
	})
	e.FailNext(meshkernel.StatusRangeError, "out of range")
	err := s.With(t.Context(), func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dCountHangingEdges()
		return err
	})
	require.Error(t, err)
	require.NoError(t, other.Close())

	snap := scope.Snapshot()
	op := map[string]string{"op": "mesh2d_count_hanging_edges"}
	assert.Equal(t, int64(2), counter(snap, "test.meshkernel.engine_calls", op))
	assert.Equal(t, int64(1), counter(snap, "test.meshkernel.engine_errors", map[string]string{
		"op":   "mesh2d_count_hanging_edges",
		"kind": "validation",
	}))
	found := false
	for _, tm := range snap.Timers() {
		if tm.Name() == "test.meshkernel.engine_latency" && maps.Equal(tm.Tags(), op) {
			found = true
			assert.Len(t, tm.Values(), 2)
		}
	}
	assert.True(t, found, "latency timer recorded")

	active, _ = gauge(snap, "test.meshkernel.sessions_active")
	assert.Equal(t, 1.0, active)
}

func TestMetricsPrefixCanBeEmpty(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	cfg := meshkernel.DefaultConfig()
	cfg.MetricsPrefix = ""
	m, _ := newManager(t, meshkernel.WithMetrics(scope), meshkernel.WithConfig(cfg))
	newSession(t, m)

	_, ok := gauge(scope.Snapshot(), "sessions_active")
	assert.True(t, ok)
}

func TestManagerLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, e := newManager(t, meshkernel.WithLogger(logging.NewZap(zap.New(core))))
	s := newSession(t, m)

	created := logs.FilterMessage("session created").All()
	require.Len(t, created, 1)
	assert.Equal(t, s.Label(), created[0].ContextMap()["session"])

	with(t, s, func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dCountHangingEdges()
		return err
	})
	calls := logs.FilterMessage("engine call").All()
	require.NotEmpty(t, calls)
	assert.Equal(t, "mesh2d_count_hanging_edges", calls[len(calls)-1].ContextMap()["op"])

	e.FailNext(meshkernel.StatusException, "boom")
	_ = s.With(t.Context(), func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dCountHangingEdges()
		return err
	})
	failed := logs.FilterMessage("engine call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, logs.FilterMessage("session destroyed").Len())
}
