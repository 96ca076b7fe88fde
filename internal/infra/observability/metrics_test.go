package observability

import (
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCompute("ok", time.Millisecond) // must not panic
}

func TestNewRegistersAllSeries(t *testing.T) {
	// promauto uses the default registry; New may only run once per process.
	m := New()
	if m.Computations == nil || m.CacheHits == nil || m.SybilRisk == nil || m.BatchSize == nil {
		t.Fatal("metric set incomplete")
	}
	m.ObserveCompute("ok", time.Millisecond)
	m.FlagsFiled.Inc()
	m.GraphNodes.Set(3)
}
