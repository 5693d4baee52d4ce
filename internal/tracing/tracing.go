// Package tracing wraps library operations in OpenTelemetry spans. Without
// an installed provider (see otelexport) the global tracer is a no-op.
package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cliptray/cliptray/internal/store"
)

const instrumentationName = "github.com/cliptray/cliptray"

// Start opens a span named op, tagged with the mutation source from ctx.
func Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if src := store.SourceFromContext(ctx); src != "" {
		attrs = append(attrs, attribute.String("cliptray.source", src))
	}
	return otel.Tracer(instrumentationName).Start(ctx, op, trace.WithAttributes(attrs...))
}

// End records err on span and ends it. Expected refusals (locked, not
// found, validation) are recorded as events but leave the span status Ok.
func End(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, store.ErrLocked), errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrReservedName), store.IsValidation(err):
		span.AddEvent("refused", trace.WithAttributes(attribute.String("reason", err.Error())))
		span.SetStatus(codes.Ok, "")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Attribute helpers for the common keys.
func SectionID(id string) attribute.KeyValue { return attribute.String("cliptray.section_id", id) }
func ClipID(id string) attribute.KeyValue    { return attribute.String("cliptray.clip_id", id) }
func Count(n int) attribute.KeyValue         { return attribute.Int("cliptray.count", n) }
