package goVault

import (
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricValidateLatency, time.Millisecond)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0 on disabled metrics, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricLoginFailure); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricLogout); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsSnapshotCopies(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricValidateLatency, 3*time.Millisecond)

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected counter in snapshot, got %+v", snap.Counters)
	}
	if snap.Histograms[MetricValidateLatency][0] != 1 {
		t.Fatalf("expected first bucket hit, got %+v", snap.Histograms)
	}

	// Later increments must not leak into an already-taken snapshot.
	m.Inc(MetricLoginSuccess)
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatal("snapshot mutated after Inc")
	}
}

func TestObserveRequiresLatencyEnabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: false})
	m.Observe(MetricValidateLatency, time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Histograms) != 0 {
		t.Fatalf("expected no histogram data, got %+v", snap.Histograms)
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{10 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{50 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{250 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{time.Second, 7},
	}

	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricValidateLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics should report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0 from nil metrics, got %d", got)
	}
}
