package tracing

import (
	"context"
	"fmt"
	"os"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
)

type CleanupFunc func()

// Init installs an OTLP exporter when OTEL_EXPORTER_OTLP_ENDPOINT is set.
// Without it spans are created but never exported.
func Init(ctx context.Context, serviceName, serviceVersion string) (CleanupFunc, error) {
	logger := logging.GetLoggerFromContext(ctx)

	exporterEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cleanupFunc := func() {}

	if exporterEndpoint != "" {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(ctx, client)
		if err != nil {
			return cleanupFunc, fmt.Errorf("creating OTLP trace exporter: %w", err)
		}

		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(newResource(serviceName, serviceVersion)),
		)
		otel.SetTracerProvider(tracerProvider)

		logger.Info().Str("endpoint", exporterEndpoint).Msg("exporting traces")

		cleanupFunc = func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("stopping tracer provider")
			}
		}
	}

	return cleanupFunc, nil
}

// ExtractTraceID returns the trace id of the span in ctx, if any.
func ExtractTraceID(ctx context.Context) (string, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return "", false
	}
	return sc.TraceID().String(), true
}

// RecordAnyErrorAndEndSpan marks the span as failed if err is not nil and
// ends it.
func RecordAnyErrorAndEndSpan(err error, span trace.Span) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// newResource returns a resource describing this application.
func newResource(serviceName, version string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(version),
	)
}
