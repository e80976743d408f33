package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	is := is.New(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cleanup, err := Init(context.Background(), "aquavise-test", "0.0.0")
	is.NoErr(err)
	cleanup()
}

func TestExtractTraceID(t *testing.T) {
	is := is.New(t)

	_, ok := ExtractTraceID(context.Background())
	is.True(!ok)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	traceID, ok := ExtractTraceID(ctx)
	is.True(ok)
	is.Equal(traceID, span.SpanContext().TraceID().String())
}

func TestRecordAnyErrorAndEndSpan(t *testing.T) {
	is := is.New(t)

	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordAnyErrorAndEndSpan(errors.New("failed"), span)

	ro := span.(sdktrace.ReadOnlySpan)
	is.Equal(ro.Status().Code, codes.Error)
	is.Equal(len(ro.Events()), 1)
	is.True(!ro.EndTime().IsZero())
}
