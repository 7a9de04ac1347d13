package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs an in-memory tracer for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	setTracer(provider.Tracer("test"), true)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		_, _ = Init(context.Background(), DefaultConfig())
	})
	return recorder
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "dirserve", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	// Spans still work, they are just not recorded.
	spanCtx, span := StartSpan(ctx, "noop")
	defer span.End()
	assert.Empty(t, TraceID(spanCtx))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestCommandSpans(t *testing.T) {
	recorder := recordSpans(t)
	ctx := context.Background()

	connCtx, connSpan := StartConnectionSpan(ctx, "conn-1", "127.0.0.1:5000")
	assert.NotEmpty(t, TraceID(connCtx))

	cmdCtx, cmdSpan := StartCommandSpan(connCtx, "GET", "a.txt")
	SetAttributes(cmdCtx, Outcome("ok"), BytesSent(42), Chunks(1))
	AddEvent(cmdCtx, "header sent")
	cmdSpan.End()

	_, listSpan := StartCommandSpan(connCtx, "LIST", "", Entries(3))
	listSpan.End()
	connSpan.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	get := spans[0]
	assert.Equal(t, "dirserve.GET", get.Name())
	assert.Equal(t, connSpan.SpanContext().SpanID(), get.Parent().SpanID())
	attrs := attrsOf(get)
	assert.Equal(t, "GET", attrs[AttrCommand].AsString())
	assert.Equal(t, "a.txt", attrs[AttrFilename].AsString())
	assert.Equal(t, int64(42), attrs[AttrBytesSent].AsInt64())
	require.Len(t, get.Events(), 1)

	list := spans[1]
	assert.Equal(t, "dirserve.LIST", list.Name())
	_, hasFilename := attrsOf(list)[AttrFilename]
	assert.False(t, hasFilename)
	assert.Equal(t, int64(3), attrsOf(list)[AttrEntries].AsInt64())

	conn := spans[2]
	assert.Equal(t, SpanConnection, conn.Name())
	assert.Equal(t, "127.0.0.1:5000", attrsOf(conn)[AttrClientAddr].AsString())
}

func TestRecordError(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "failing")
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("broken pipe"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "broken pipe", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}

func TestParseProfileType(t *testing.T) {
	for _, pt := range DefaultProfileTypes() {
		_, err := parseProfileType(pt)
		assert.NoError(t, err, pt)
	}
	_, err := parseProfileType("bogus")
	assert.Error(t, err)
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "bogus"}})
	assert.Error(t, err)
	assert.False(t, IsProfilingEnabled())
}
