package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestConfig(t *testing.T) {
	cfg := Config{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
		SampleRate:  0.5,
	}

	if cfg.ServiceName != "test-service" {
		t.Errorf("ServiceName = %s, want test-service", cfg.ServiceName)
	}
}

func TestInit_Disabled(t *testing.T) {
	cfg := Config{
		Enabled:     false,
		ServiceName: "test",
	}

	provider, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if provider == nil {
		t.Fatal("provider should not be nil")
	}

	if provider.tracer == nil {
		t.Error("tracer should not be nil even when disabled")
	}
}

func TestGet_Uninitialized(t *testing.T) {
	// Reset global
	globalProvider = nil

	provider := Get()
	if provider == nil {
		t.Fatal("Get() should return provider even when uninitialized")
	}

	if provider.tracer == nil {
		t.Error("tracer should not be nil")
	}
}

func TestStartSpan(t *testing.T) {
	globalProvider = nil

	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "test-span")

	if span == nil {
		t.Error("span should not be nil")
	}

	// Проверяем, что контекст изменился (содержит span)
	_ = newCtx

	span.End()
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "test-span")
	defer span.End()

	// Should not panic
	AddEvent(newCtx, "test-event",
		attribute.String("key", "value"),
		attribute.Int("count", 42),
	)
}

func TestSetError(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "test-span")
	defer span.End()

	// Should not panic
	SetError(newCtx, context.DeadlineExceeded)
}

func TestSetError_RecordsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	globalProvider = &Provider{tp: tp, tracer: tp.Tracer(TracerName)}
	defer func() { globalProvider = nil }()

	ctx, span := StartSpan(context.Background(), "KPathService.Rank")
	SetError(ctx, errors.New("no path"))
	AddEvent(ctx, "cache_hit", attribute.Int("paths", 2))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended[0].Status().Code)
	}
	if len(ended[0].Events()) != 2 {
		t.Errorf("expected exception and cache_hit events, got %d", len(ended[0].Events()))
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want sdktrace.SamplingDecision
	}{
		{1, sdktrace.RecordAndSample},
		{2, sdktrace.RecordAndSample},
		{0, sdktrace.Drop},
		{-1, sdktrace.Drop},
	}

	for _, tt := range tests {
		sampler := newSampler(tt.rate)
		res := sampler.ShouldSample(sdktrace.SamplingParameters{
			ParentContext: context.Background(),
			TraceID:       trace.TraceID{1},
			Name:          "root",
		})
		if res.Decision != tt.want {
			t.Errorf("newSampler(%v) decision = %v, want %v", tt.rate, res.Decision, tt.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "kpath-svc", Version: "1.2.3", Environment: "test"}, "inst-1")
	if err != nil {
		t.Fatalf("newResource() error = %v", err)
	}

	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["service.name"] != "kpath-svc" {
		t.Errorf("service.name = %q", got["service.name"])
	}
	if got["service.instance.id"] != "inst-1" {
		t.Errorf("service.instance.id = %q", got["service.instance.id"])
	}
}

func TestInit_EnabledWithoutEndpoint(t *testing.T) {
	if _, err := Init(context.Background(), Config{Enabled: true}); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestProvider_Tracer(t *testing.T) {
	provider := &Provider{
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	tracer := provider.Tracer()
	if tracer == nil {
		t.Error("Tracer() should not return nil")
	}
}

func TestProvider_Shutdown(t *testing.T) {
	provider := &Provider{
		tp:     nil,
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	err := provider.Shutdown(context.Background())
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestProvider_ShutdownOnce(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	provider := &Provider{tp: tp, tracer: tp.Tracer(TracerName)}
	globalProvider = provider

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if globalProvider != nil {
		t.Error("Shutdown should clear the global provider")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestRequestAttributes(t *testing.T) {
	attrs := RequestAttributes(10, 20, 1, 5, 3)

	if len(attrs) != 5 {
		t.Errorf("expected 5 attributes, got %d", len(attrs))
	}

	expected := map[string]bool{
		AttrGraphVertices: true,
		AttrGraphEdges:    true,
		AttrSource:        true,
		AttrTarget:        true,
		AttrK:             true,
	}

	for _, attr := range attrs {
		key := string(attr.Key)
		if !expected[key] {
			t.Errorf("unexpected attribute key: %s", key)
		}
	}
}

func TestRankAttributes(t *testing.T) {
	attrs := RankAttributes("yen", 4, 12, 7)

	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d", len(attrs))
	}
}

func TestGraphAttributes(t *testing.T) {
	attrs := GraphAttributes(0.25, 3, 5, true)

	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsFloat64() != 0.25 {
		t.Errorf("density = %v, want 0.25", attrs[0].Value.AsFloat64())
	}
	if !attrs[3].Value.AsBool() {
		t.Error("target_reachable should be true")
	}
}

func TestConnSpan_RecordsOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	globalProvider = &Provider{tp: tp, tracer: tp.Tracer("test")}
	defer func() { globalProvider = nil }()

	_, span := StartConnSpan(context.Background(), "handler.Serve", "c-1", "127.0.0.1:1")
	EndConnSpan(span, "protocol_error", errors.New("bad header"))

	_, span = StartConnSpan(context.Background(), "handler.Serve", "c-2", "127.0.0.1:2")
	EndConnSpan(span, "ok", nil)

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("first span status = %v, want Error", ended[0].Status().Code)
	}
	if ended[1].Status().Code != codes.Ok {
		t.Errorf("second span status = %v, want Ok", ended[1].Status().Code)
	}
	if ended[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", ended[0].SpanKind())
	}
}
