// Package otelcol wires the OpenTelemetry trace pipeline: an OTLP exporter
// pointed at the collector sidecar, a batching tracer provider, and the
// global registration the rest of the codebase reads spans from.
package otelcol

import (
	"context"

	"questflow/pkg/config"
	"questflow/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/fx"
)

var Module = fx.Module("otelcol",
	fx.Provide(exporters.ProvideHTTP, ProvideTrace),
	fx.Invoke(registerTracerProvider),
)

func ProvideTrace(cfg *config.Config, exporter *otlptrace.Exporter) *trace.TracerProvider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.DeploymentEnvironmentName(cfg.AppEnv),
	)

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
	)
}

func registerTracerProvider(lc fx.Lifecycle, tp *trace.TracerProvider) {
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
}
