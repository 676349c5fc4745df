package metrics

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitMetrics(t *testing.T) {
	// Create fresh registry to avoid conflicts
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	m := InitMetrics("test", "service")

	if m == nil {
		t.Fatal("InitMetrics returned nil")
	}
	if m.ConnectionsTotal == nil {
		t.Error("ConnectionsTotal should not be nil")
	}
	if m.RankDuration == nil {
		t.Error("RankDuration should not be nil")
	}
	if Get() != m {
		t.Error("Get() should return the initialized instance")
	}
}

func TestGet(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defaultMetrics = nil

	m := Get()
	if m == nil {
		t.Error("Get() should not return nil")
	}

	// Second call should return same instance
	if m2 := Get(); m2 != m {
		t.Error("Get() should return same instance")
	}
}

func TestRecordConnection(t *testing.T) {
	m := New(prometheus.NewRegistry(), "test", "conn")

	m.RecordConnection("ok")
	m.RecordConnection("ok")
	m.RecordConnection("protocol_error")

	if got := testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("connections_total{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues("protocol_error")); got != 1 {
		t.Errorf("connections_total{outcome=protocol_error} = %v, want 1", got)
	}
}

func TestRecordRank(t *testing.T) {
	m := New(prometheus.NewRegistry(), "test", "rank")

	m.RecordRank(true, 2*time.Millisecond, 3, 12)
	m.RecordRank(false, time.Millisecond, 0, 0)

	if got := testutil.ToFloat64(m.RankOperationsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("rank_operations_total{status=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RankOperationsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("rank_operations_total{status=error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.PathsReturned); got != 1 {
		t.Errorf("paths_returned series = %d, want 1", got)
	}
}

func TestRecordGraphSize(t *testing.T) {
	m := New(prometheus.NewRegistry(), "test", "graph")

	m.RecordGraphSize(100, 500)
	m.RecordGraphSize(3, 3)
}

func TestRecordCacheLookup(t *testing.T) {
	m := New(prometheus.NewRegistry(), "test", "cache")

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	if got := testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache_requests_total{result=miss} = %v, want 2", got)
	}
}

func TestSetServiceInfo(t *testing.T) {
	m := New(prometheus.NewRegistry(), "test", "info")

	m.SetServiceInfo("1.0.0", "production")

	if got := testutil.ToFloat64(m.ServiceInfo.WithLabelValues("1.0.0", "production")); got != 1 {
		t.Errorf("service_info = %v, want 1", got)
	}
}

func TestRuntimeCollector(t *testing.T) {
	collector := NewRuntimeCollector("test", "runtime")

	descCh := make(chan *prometheus.Desc, 10)
	collector.Describe(descCh)
	close(descCh)

	count := 0
	for range descCh {
		count++
	}
	if count < 5 {
		t.Errorf("expected at least 5 descriptors, got %d", count)
	}

	metricCh := make(chan prometheus.Metric, 10)
	collector.Collect(metricCh)
	close(metricCh)

	count = 0
	for range metricCh {
		count++
	}
	if count < 5 {
		t.Errorf("expected at least 5 metrics, got %d", count)
	}
}

func TestRuntimeCollector_GCPause(t *testing.T) {
	// Force a GC to ensure we have GC data
	runtime.GC()

	collector := NewRuntimeCollector("test", "gc")
	metricCh := make(chan prometheus.Metric, 10)
	collector.Collect(metricCh)
	close(metricCh)

	count := 0
	for range metricCh {
		count++
	}
	if count != 6 {
		t.Errorf("expected 6 metrics after GC, got %d", count)
	}
}

func TestConnTracker(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_in_flight",
	})

	tracker := NewConnTracker(gauge)

	tracker.Start()
	tracker.Start()
	if tracker.Active() != 2 {
		t.Errorf("Active() = %d, want 2", tracker.Active())
	}

	tracker.End()
	if got := testutil.ToFloat64(gauge); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}

	// End more than started should not go negative
	tracker.End()
	tracker.End()
	if tracker.Active() != 0 {
		t.Errorf("Active() = %d, want 0", tracker.Active())
	}
	if got := testutil.ToFloat64(gauge); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestTimer(t *testing.T) {
	histogram := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "test_duration",
			Buckets: []float64{.01, .1, 1},
		},
	)

	timer := NewTimer(histogram)

	time.Sleep(10 * time.Millisecond)

	duration := timer.ObserveDuration()
	if duration < 10*time.Millisecond {
		t.Errorf("duration = %v, expected >= 10ms", duration)
	}
}

func TestNewServer_Health(t *testing.T) {
	srv := NewServer(9099, "")
	if srv.Addr != ":9099" {
		t.Errorf("Addr = %s, want :9099", srv.Addr)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OK") {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}
