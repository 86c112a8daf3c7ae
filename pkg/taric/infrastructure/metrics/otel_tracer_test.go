package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewExporterProtocols(t *testing.T) {
	ctx := context.Background()
	for _, protocol := range []string{"http", "grpc"} {
		t.Run(protocol, func(t *testing.T) {
			exp, err := NewExporter(ctx, protocol, "localhost:4318", true)
			require.NoError(t, err)
			assert.NoError(t, exp.Shutdown(ctx))
		})
	}

	_, err := NewExporter(ctx, "zipkin", "localhost:9411", true)
	assert.ErrorContains(t, err, "unsupported otlp protocol")
}

func TestTracerRecordsSpans(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	tracer := NewOpenTelemetryTracer(tp)

	_, end := tracer.Start(context.Background(), "import.chunk", map[string]string{"batch": "seed.xml"})
	end(errors.New("commit failed"))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "import.chunk", ended[0].Name())
	assert.Equal(t, "commit failed", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1, "error recorded as an event")
}
