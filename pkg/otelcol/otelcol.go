package otelcol

import (
	"context"

	"dreamseller-controlplane/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("otelcol", fx.Invoke(registerTracerProvider))

func defaultTraceProviderOption(cfg *config.Config) []trace.TracerProviderOption {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(cfg.AppVersion),
	))
	if err != nil {
		res = resource.Default()
	}

	return []trace.TracerProviderOption{
		trace.WithResource(res),
	}
}

func ProvideTrace(exporter trace.SpanExporter, opts ...trace.TracerProviderOption) *trace.TracerProvider {
	opts = append(opts, trace.WithBatcher(exporter))

	return trace.NewTracerProvider(opts...)
}

// registerTracerProvider wires the OTLP gRPC exporter when an endpoint is
// configured. Without one the global no-op provider stays in place and span
// fields in logs are simply empty.
func registerTracerProvider(lc fx.Lifecycle, cfg *config.Config) {
	if cfg.Otel.Addr == "" {
		return
	}

	var tp *trace.TracerProvider

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			exporter, err := otlptracegrpc.New(ctx,
				otlptracegrpc.WithEndpoint(cfg.Otel.Addr),
				otlptracegrpc.WithInsecure(),
			)
			if err != nil {
				zap.L().Error("failed to create OTLP trace exporter", zap.Error(err))
				return err
			}

			tp = ProvideTrace(exporter, defaultTraceProviderOption(cfg)...)
			otel.SetTracerProvider(tp)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if tp == nil {
				return nil
			}
			return tp.Shutdown(ctx)
		},
	})
}
