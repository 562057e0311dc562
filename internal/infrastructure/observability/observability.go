// Package observability wires OpenTelemetry trace and metric pipelines for
// the gateway. Export goes over OTLP/HTTP; when OTEL_ENABLED is off the
// providers are still installed so instrumented code paths stay cheap no-ops.
package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"tee-chat/services/chat-gateway/internal/config"
)

const metricExportInterval = 30 * time.Second

// Shutdown flushes and releases the installed telemetry providers.
type Shutdown func(ctx context.Context) error

// Setup installs the global tracer and meter providers. It returns a
// Shutdown that the caller must invoke on exit to flush pending spans and
// metric batches.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Shutdown, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	exporting := cfg.EnableTracing && cfg.OTLPEndpoint != ""

	var traces *sdktrace.TracerProvider
	var meters *sdkmetric.MeterProvider
	if exporting {
		traces, meters, err = buildExportingProviders(ctx, cfg.OTLPEndpoint, res)
		if err != nil {
			return nil, err
		}
		log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("Tracing and metrics enabled")
	} else {
		traces = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		meters = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		log.Info().Msg("Tracing disabled, using noop providers")
	}

	otel.SetTracerProvider(traces)
	otel.SetMeterProvider(meters)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(meters.Shutdown(ctx), traces.Shutdown(ctx))
	}, nil
}

func buildExportingProviders(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	host, insecure := splitEndpoint(endpoint)

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(host)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(host)}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, err
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, err
	}

	traces := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval))),
	)
	return traces, meters, nil
}

// splitEndpoint strips the scheme from an OTLP endpoint. The exporter options
// take a bare host:port; a http:// scheme means plaintext transport.
func splitEndpoint(endpoint string) (host string, insecure bool) {
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return rest, false
	}
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return rest, true
	}
	return endpoint, true
}
