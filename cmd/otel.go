//go:build otel

package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/tracing/otelexport"
)

// initOTelExporter installs the OpenTelemetry OTLP exporter when the
// telemetry config is enabled and returns its shutdown func. Only compiled
// with -tags otel.
func initOTelExporter(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		slog.Debug("OTel export available but not enabled (set telemetry.enabled + telemetry.endpoint)")
		return func() {}
	}

	otelExp, err := otelexport.New(ctx, otelexport.Options{
		Endpoint:    cfg.Telemetry.Endpoint,
		Protocol:    cfg.Telemetry.Protocol,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     Version,
		Headers:     cfg.Telemetry.Headers,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		slog.Warn("failed to create OTel exporter", "error", err)
		return func() {}
	}

	otelExp.Install()
	slog.Info("OpenTelemetry OTLP export enabled",
		"endpoint", cfg.Telemetry.Endpoint,
		"protocol", cfg.Telemetry.Protocol,
	)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelExp.Shutdown(ctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}
}
