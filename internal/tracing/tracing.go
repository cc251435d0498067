// Package tracing installs the OpenTelemetry tracer provider used by the processor.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/nguyentantai21042004/itemflow/internal/config"
	"github.com/nguyentantai21042004/itemflow/internal/logger"
)

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a global OTLP/HTTP tracer provider. Without an endpoint
// tracing stays disabled and the returned shutdown does nothing.
func Setup(ctx context.Context, cfg config.TracingConfig, log logger.Logger) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		log.Debug(ctx, "Tracing disabled: no endpoint configured")
		return noopShutdown, nil
	}

	log.Info(ctx, "Setting up tracing: service=%s endpoint=%s environment=%s",
		cfg.ServiceName, cfg.Endpoint, cfg.Environment)

	// host:port only, the exporter adds the path
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
