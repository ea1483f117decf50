package tracing

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"seo-assistant/internal/domain"
)

const DefaultSpanName = "seo-description"

type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

// TracedClient records every completion as a Langfuse generation.
type TracedClient struct {
	next   Completer
	tracer trace.Tracer
	name   string
}

func NewTracedClient(next Completer, tracer trace.Tracer, name string) *TracedClient {
	if name == "" {
		name = DefaultSpanName
	}
	return &TracedClient{next: next, tracer: tracer, name: name}
}

func (c *TracedClient) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	ctx, span := c.tracer.Start(ctx, c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(requestAttributes(req)...),
	)
	defer span.End()

	out, err := c.next.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", out.Model),
		attribute.Int("gen_ai.usage.input_tokens", out.Usage.PromptTokens),
		attribute.Int("gen_ai.usage.output_tokens", out.Usage.CompletionTokens),
		attribute.String("langfuse.observation.output", out.Text),
	)
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func requestAttributes(req domain.CompletionRequest) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("langfuse.observation.type", "generation"),
		attribute.String("gen_ai.request.model", req.Model),
		attribute.Float64("gen_ai.request.temperature", req.Temperature),
	}
	if req.MaxTokens > 0 {
		attrs = append(attrs, attribute.Int("gen_ai.request.max_tokens", req.MaxTokens))
	}
	if req.User != "" {
		attrs = append(attrs, attribute.String("langfuse.user.id", req.User))
	}
	if req.RequestID != "" {
		attrs = append(attrs, attribute.String("app.request_id", req.RequestID))
	}
	if input, err := json.Marshal(req.Messages); err == nil {
		attrs = append(attrs, attribute.String("langfuse.observation.input", string(input)))
	}
	return attrs
}
