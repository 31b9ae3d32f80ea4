package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/groupchat/internal/ai"
)

// tracedClient records a span around every Generate call of the wrapped client
type tracedClient struct {
	client   ai.LanguageModelClient
	tracer   trace.Tracer
	provider string
	model    string
}

// WrapClient returns a client that traces calls to the given client
func WrapClient(client ai.LanguageModelClient, tracer trace.Tracer, provider string, model string) ai.LanguageModelClient {
	return &tracedClient{
		client:   client,
		tracer:   tracer,
		provider: provider,
		model:    model,
	}
}

func (tc *tracedClient) Generate(ctx context.Context, history []ai.Message, instructions string) (ai.Message, error) {
	ctx, span := tc.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", tc.provider),
		attribute.String("llm.model", tc.model),
		attribute.Int("llm.history_length", len(history)),
	))
	defer span.End()

	msg, err := tc.client.Generate(ctx, history, instructions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ai.Message{}, err
	}

	span.SetAttributes(
		attribute.Int64("llm.usage.input_tokens", msg.Usage.InputTokens),
		attribute.Int64("llm.usage.output_tokens", msg.Usage.OutputTokens),
		attribute.Int("llm.content_items", len(msg.Items)),
	)
	return msg, nil
}
