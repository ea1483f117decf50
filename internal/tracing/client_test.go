package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"seo-assistant/internal/domain"
)

type stubCompleter struct {
	out   domain.Completion
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _ domain.CompletionRequest) (domain.Completion, error) {
	s.calls++
	return s.out, s.err
}

func recordingTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func sampleRequest() domain.CompletionRequest {
	return domain.CompletionRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		User:        "42",
		RequestID:   "req-1",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "instruction"},
			{Role: domain.RoleUser, Content: "клавиатура"},
		},
	}
}

func TestTracedClient_RecordsGeneration(t *testing.T) {
	sr, tp := recordingTracer(t)
	next := &stubCompleter{out: domain.Completion{
		Text:  "описание",
		Model: "gpt-4o-mini-2024",
		Usage: domain.Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33},
	}}
	c := NewTracedClient(next, tp.Tracer("test"), "")

	out, err := c.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "описание", out.Text)
	require.Equal(t, 1, next.calls)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, DefaultSpanName, spans[0].Name())
	require.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := attrMap(spans[0].Attributes())
	require.Equal(t, "generation", attrs["langfuse.observation.type"].AsString())
	require.Equal(t, "gpt-4o-mini", attrs["gen_ai.request.model"].AsString())
	require.Equal(t, 0.2, attrs["gen_ai.request.temperature"].AsFloat64())
	require.Equal(t, "42", attrs["langfuse.user.id"].AsString())
	require.Equal(t, "req-1", attrs["app.request_id"].AsString())
	require.Contains(t, attrs["langfuse.observation.input"].AsString(), "клавиатура")
	require.Equal(t, "описание", attrs["langfuse.observation.output"].AsString())
	require.Equal(t, int64(11), attrs["gen_ai.usage.input_tokens"].AsInt64())
	require.Equal(t, int64(22), attrs["gen_ai.usage.output_tokens"].AsInt64())
	require.NotContains(t, attrs, "gen_ai.request.max_tokens")
}

func TestTracedClient_RecordsFailure(t *testing.T) {
	sr, tp := recordingTracer(t)
	next := &stubCompleter{err: errors.New("openai: unexpected status 500")}
	c := NewTracedClient(next, tp.Tracer("test"), "ping")

	req := sampleRequest()
	req.MaxTokens = 300
	_, err := c.Complete(context.Background(), req)
	require.EqualError(t, err, "openai: unexpected status 500")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "ping", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, "openai: unexpected status 500", spans[0].Status().Description)
	require.Equal(t, int64(300), attrMap(spans[0].Attributes())["gen_ai.request.max_tokens"].AsInt64())
	require.NotEmpty(t, spans[0].Events())
}

func TestTracedClient_NoopTracerPassesThrough(t *testing.T) {
	next := &stubCompleter{out: domain.Completion{Text: "ok"}}
	c := NewTracedClient(next, noop.NewTracerProvider().Tracer("test"), "")

	out, err := c.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "ok", out.Text)
	require.Equal(t, 1, next.calls)
}
