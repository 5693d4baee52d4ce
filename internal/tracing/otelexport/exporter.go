// Package otelexport ships the spans opened by the tracing package to an
// OTLP collector. It is only linked into binaries built with -tags otel.
package otelexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	defaultService = "cliptray"
	batchSize      = 100
	batchTimeout   = 5 * time.Second
)

// Options selects the collector and how spans reach it.
type Options struct {
	Endpoint    string // host:port of the collector
	Protocol    string // "grpc" (default) or "http"
	Insecure    bool
	ServiceName string
	Version     string
	Headers     map[string]string
	// SampleRatio is the fraction of root spans kept. Values outside (0, 1]
	// keep everything.
	SampleRatio float64
}

// Exporter owns the tracer provider that ships library spans over OTLP.
type Exporter struct {
	provider *sdktrace.TracerProvider
}

// New dials nothing up front; the OTLP clients connect lazily on the first
// batch.
func New(ctx context.Context, opts Options) (*Exporter, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("otlp endpoint is required")
	}

	spans, err := spanExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("otlp %s exporter: %w", protocolName(opts), err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName(opts)),
		semconv.ServiceVersion(opts.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	return &Exporter{provider: sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans,
			sdktrace.WithMaxExportBatchSize(batchSize),
			sdktrace.WithBatchTimeout(batchTimeout),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
	)}, nil
}

func spanExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	if protocolName(opts) == "http" {
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if len(opts.Headers) > 0 {
			httpOpts = append(httpOpts, otlptracehttp.WithHeaders(opts.Headers))
		}
		return otlptracehttp.New(ctx, httpOpts...)
	}

	grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}
	return otlptracegrpc.New(ctx, grpcOpts...)
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Install makes the exporter's provider the global one.
func (e *Exporter) Install() {
	if e != nil {
		otel.SetTracerProvider(e.provider)
	}
}

// Shutdown flushes buffered spans and stops the provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	slog.Info("otel exporter shutting down")
	return e.provider.Shutdown(ctx)
}

func protocolName(opts Options) string {
	if opts.Protocol == "http" {
		return "http"
	}
	return "grpc"
}

func serviceName(opts Options) string {
	if opts.ServiceName == "" {
		return defaultService
	}
	return opts.ServiceName
}
