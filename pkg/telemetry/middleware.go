package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartConnSpan начинает серверный span на время обслуживания одного соединения
func StartConnSpan(ctx context.Context, name, connID, remote string) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(AttrConnID, connID),
			attribute.String(AttrPeerAddr, remote),
		),
	)
}

// EndConnSpan завершает span соединения, выставляя статус по итогу обработки
func EndConnSpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String(AttrConnResult, outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
