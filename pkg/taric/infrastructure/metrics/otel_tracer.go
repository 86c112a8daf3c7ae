package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	coremetrics "github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

const instrumentationName = "github.com/tigerroll/tamato/pkg/taric"

// OpenTelemetryTracer implements metrics.Tracer on an otel tracer.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer uses the tracer from provider, or the global
// provider when provider is nil.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &OpenTelemetryTracer{tracer: provider.Tracer(instrumentationName)}
}

// Start implements metrics.Tracer.
func (t *OpenTelemetryTracer) Start(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error)) {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(kvs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// NewExporter returns an OTLP span exporter for protocol "http" or "grpc".
// Neither connects until the first export.
func NewExporter(ctx context.Context, protocol, endpoint string, insecure bool) (sdktrace.SpanExporter, error) {
	switch protocol {
	case "", "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
}

// NewTracerProvider builds an SDK provider exporting over OTLP to endpoint
// and installs it globally. The returned function flushes and shuts it down.
func NewTracerProvider(ctx context.Context, protocol, endpoint, serviceName string, insecure bool) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	exporter, err := NewExporter(ctx, protocol, endpoint, insecure)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	logger.Infof("exporting traces to %s over %s", endpoint, protocol)
	return tp, tp.Shutdown, nil
}

var _ coremetrics.Tracer = (*OpenTelemetryTracer)(nil)
