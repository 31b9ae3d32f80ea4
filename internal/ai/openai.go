package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	oaiopt "github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/cchalm/groupchat/internal/tools"
)

const providerOpenAI = "openai"

// CompletionSender sends a single request to an OpenAI-compatible chat completions API
type CompletionSender interface {
	SendCompletion(ctx context.Context, params openai.ChatCompletionNewParams, opts ...oaiopt.RequestOption) (*openai.ChatCompletion, error)
}

// ChatCompletionSender implements CompletionSender with the OpenAI SDK client
type ChatCompletionSender struct {
	client openai.Client
}

func NewChatCompletionSender(client openai.Client) ChatCompletionSender {
	return ChatCompletionSender{client: client}
}

func (ccs ChatCompletionSender) SendCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	opts ...oaiopt.RequestOption,
) (*openai.ChatCompletion, error) {
	completion, err := ccs.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		b, err := json.Marshal(completion)
		if err != nil {
			logrus.WithError(err).Warn("Error while marshalling corrupt completion for inspection")
		}
		return nil, fmt.Errorf("malformed completion: %v", string(b))
	}
	return completion, nil
}

// OpenAIClient implements LanguageModelClient with an OpenAI-compatible chat completions API, e.g. a local Ollama
// server
type OpenAIClient struct {
	sender          CompletionSender
	model           string
	maxOutputTokens int64
	tools           *tools.Registry // May be nil
}

func NewOpenAIClient(sender CompletionSender, model string, maxOutputTokens int64, toolRegistry *tools.Registry) *OpenAIClient {
	return &OpenAIClient{
		sender:          sender,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		tools:           toolRegistry,
	}
}

// Generate sends the history to the model, running any requested tools until the model produces a final answer
func (oc *OpenAIClient) Generate(ctx context.Context, history []Message, instructions string) (Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(oc.model),
		Messages: toOpenAIMessages(history, instructions),
	}
	if oc.maxOutputTokens > 0 {
		params.MaxTokens = openai.Int(oc.maxOutputTokens)
	}
	for _, def := range oc.tools.Definitions() {
		params.Tools = append(params.Tools, toOpenAITool(def))
	}

	result := Message{
		ID:   uuid.NewString(),
		Role: RoleAgent,
	}
	for round := 0; ; round++ {
		if round == maxToolRounds {
			return Message{}, NewRemoteCallError(providerOpenAI, fmt.Errorf("model requested tools more than %d times in a row", maxToolRounds))
		}

		completion, err := oc.sender.SendCompletion(ctx, params)
		if err != nil {
			return Message{}, NewRemoteCallError(providerOpenAI, err)
		}

		usage := Usage{InputTokens: completion.Usage.PromptTokens, OutputTokens: completion.Usage.CompletionTokens}
		result.Usage = result.Usage.Add(usage)
		choice := completion.Choices[0]
		logrus.WithFields(logrus.Fields{
			"provider":      providerOpenAI,
			"model":         oc.model,
			"input_tokens":  usage.InputTokens,
			"output_tokens": usage.OutputTokens,
			"finish_reason": choice.FinishReason,
		}).Debug("Model response received")

		if choice.Message.Content != "" {
			result.Items = append(result.Items, TextContent{Text: choice.Message.Content})
		}
		if len(choice.Message.ToolCalls) == 0 {
			break
		}

		params.Messages = append(params.Messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			result.Items = append(result.Items, FunctionCallContent{ID: call.ID, Name: call.Function.Name, Arguments: call.Function.Arguments})
			toolResult, err := oc.tools.Dispatch(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				return Message{}, err
			}
			result.Items = append(result.Items, FunctionResultContent{CallID: call.ID, Result: toolResult.Content, IsError: toolResult.IsError})
			params.Messages = append(params.Messages, openai.ToolMessage(toolResult.Content, call.ID))
		}
	}

	return result, nil
}

func toOpenAIMessages(history []Message, instructions string) []openai.ChatCompletionMessageParamUnion {
	var params []openai.ChatCompletionMessageParamUnion
	if instructions != "" {
		params = append(params, openai.SystemMessage(instructions))
	}
	for _, msg := range history {
		text := transcriptText(msg)
		if text == "" {
			continue
		}
		if msg.Role == RoleUser {
			params = append(params, openai.UserMessage(text))
		} else {
			params = append(params, openai.AssistantMessage(text))
		}
	}
	return params
}

func toOpenAITool(def tools.Definition) openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  openai.FunctionParameters(def.InputSchema),
		},
	}
}
