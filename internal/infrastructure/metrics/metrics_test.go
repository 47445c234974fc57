package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.BatchRuns == nil || m.ArtistsSucceeded == nil || m.SettlementsBuilt == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	m.ObserveRun(3, 1, false, 2*time.Second)
	m.ObserveSettlement("A", "600")

	if got := counterValue(t, m.ArtistsSucceeded); got != 3 {
		t.Errorf("succeeded counter = %v, want 3", got)
	}

	if got := counterValue(t, m.ReconcileMismatches); got != 1 {
		t.Errorf("mismatch counter = %v, want 1", got)
	}

	if got := counterValue(t, m.SettlementsBuilt); got != 1 {
		t.Errorf("settlements counter = %v, want 1", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}

	return metric.GetCounter().GetValue()
}
