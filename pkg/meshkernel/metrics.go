package meshkernel

import (
	"time"

	"github.com/uber-go/tally/v4"
)

// Metric names. Call metrics carry an "op" tag; errors also carry "kind".
const (
	metricEngineCalls    = "engine_calls"
	metricEngineErrors   = "engine_errors"
	metricEngineLatency  = "engine_latency"
	metricSessionsActive = "sessions_active"
)

type metrics struct {
	scope  tally.Scope
	active tally.Gauge
}

func newMetrics(scope tally.Scope, prefix string) *metrics {
	if scope == nil {
		scope = tally.NoopScope
	}
	if prefix != "" {
		scope = scope.SubScope(prefix)
	}
	return &metrics{scope: scope, active: scope.Gauge(metricSessionsActive)}
}

func (m *metrics) engineCall(op string, d time.Duration, err error) {
	s := m.scope.Tagged(map[string]string{"op": op})
	s.Counter(metricEngineCalls).Inc(1)
	s.Timer(metricEngineLatency).Record(d)
	if err != nil {
		m.scope.Tagged(map[string]string{"op": op, "kind": errorKind(err)}).Counter(metricEngineErrors).Inc(1)
	}
}

func (m *metrics) sessions(n int) {
	m.active.Update(float64(n))
}
