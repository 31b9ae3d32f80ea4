package groupchat

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cchalm/groupchat/internal/ai"
)

// StrategyFunction evaluates a single-purpose prompt against a reduced history with one model call. The prompt is a
// text/template with the fields:
//
//	.History  the reduced history, one message per line
//	.Agents   the names of the agents eligible for the decision, if any
type StrategyFunction struct {
	name     string
	template *template.Template
	client   ai.LanguageModelClient
	reducer  HistoryReducer
	tracer   trace.Tracer
}

type strategyPromptData struct {
	History string
	Agents  []string
}

// NewStrategyFunction parses the prompt template. A nil reducer evaluates the full history; a nil tracer records
// nothing
func NewStrategyFunction(
	name string,
	promptTemplate string,
	client ai.LanguageModelClient,
	reducer HistoryReducer,
	tracer trace.Tracer,
) (*StrategyFunction, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s prompt template: %w", name, err)
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &StrategyFunction{
		name:     name,
		template: tmpl,
		client:   client,
		reducer:  reducer,
		tracer:   tracer,
	}, nil
}

// Name returns the name of the strategy the function serves
func (sf *StrategyFunction) Name() string {
	return sf.name
}

// Evaluate reduces the history, renders the prompt and returns the model's raw response text. Errors from the model
// call are returned unchanged
func (sf *StrategyFunction) Evaluate(ctx context.Context, history []ai.Message, agents []string, nameOnly bool) (string, error) {
	ctx, span := sf.tracer.Start(ctx, "strategy.evaluate", trace.WithAttributes(
		attribute.String("strategy.name", sf.name),
	))
	defer span.End()

	prompt, err := sf.Render(history, agents, nameOnly)
	if err != nil {
		return "", err
	}

	response, err := sf.client.Generate(ctx, []ai.Message{ai.NewUserMessage(prompt)}, "")
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	raw := response.Content()
	span.SetAttributes(attribute.String("strategy.response", raw))
	logrus.WithFields(logrus.Fields{
		"event":         "strategy_call",
		"strategy":      sf.name,
		"response":      raw,
		"input_tokens":  response.Usage.InputTokens,
		"output_tokens": response.Usage.OutputTokens,
	}).Debug("Strategy evaluated")
	return raw, nil
}

// Render produces the prompt that Evaluate would send
func (sf *StrategyFunction) Render(history []ai.Message, agents []string, nameOnly bool) (string, error) {
	reduced := history
	if sf.reducer != nil {
		reduced = sf.reducer.Reduce(history)
	}
	if nameOnly {
		reduced = namesOnly(reduced)
	}

	var sb strings.Builder
	err := sf.template.Execute(&sb, strategyPromptData{
		History: formatHistory(reduced),
		Agents:  agents,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", sf.name, err)
	}
	return sb.String(), nil
}

// formatHistory renders messages one per line as "<role> - <author>: <content>". Messages without content render
// without the colon
func formatHistory(history []ai.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		line := msg.Role.String()
		if msg.AuthorName != "" {
			line += " - " + msg.AuthorName
		}
		if content := msg.Content(); content != "" {
			line += ": " + content
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ParseApproval reports whether a termination response approves ending the chat: true iff it contains "yes",
// ignoring case
func ParseApproval(response string) bool {
	return strings.Contains(strings.ToLower(response), "yes")
}

// ParseSelection returns the trimmed response as an agent name. A name that is not one of the eligible agents is a
// *StrategyParseError
func ParseSelection(response string, eligible []string) (string, error) {
	name := strings.TrimSpace(response)
	if name == "" {
		return "", &StrategyParseError{Strategy: selectionStrategyName, Response: response, Reason: "empty response"}
	}
	for _, agent := range eligible {
		if agent == name {
			return name, nil
		}
	}
	return "", &StrategyParseError{Strategy: selectionStrategyName, Response: response, Reason: "not an eligible agent"}
}
