package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cchalm/groupchat/internal/tools"
)

const (
	providerAnthropic = "anthropic"

	// maxToolRounds bounds the number of consecutive tool-use round trips within a single Generate call
	maxToolRounds = 8
)

// AnthropicClient implements LanguageModelClient with the Anthropic messages API
type AnthropicClient struct {
	sender          MessageSender
	model           anthropic.Model
	maxOutputTokens int64
	tools           *tools.Registry // May be nil
}

func NewAnthropicClient(
	sender MessageSender,
	model anthropic.Model,
	maxOutputTokens int64,
	toolRegistry *tools.Registry,
) *AnthropicClient {
	return &AnthropicClient{
		sender:          sender,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		tools:           toolRegistry,
	}
}

// Generate sends the history to the model, running any requested tools until the model produces a final answer
func (ac *AnthropicClient) Generate(ctx context.Context, history []Message, instructions string) (Message, error) {
	params := anthropic.MessageNewParams{
		Model:     ac.model,
		MaxTokens: ac.maxOutputTokens,
		Messages:  toAnthropicMessages(history),
	}
	if instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: instructions}}
	}
	for _, def := range ac.tools.Definitions() {
		tool := toAnthropicTool(def)
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &tool})
	}

	result := Message{
		ID:   uuid.NewString(),
		Role: RoleAgent,
	}
	for round := 0; ; round++ {
		if round == maxToolRounds {
			return Message{}, NewRemoteCallError(providerAnthropic, fmt.Errorf("model requested tools more than %d times in a row", maxToolRounds))
		}

		response, err := ac.sender.SendMessage(ctx, params)
		if err != nil {
			return Message{}, NewRemoteCallError(providerAnthropic, err)
		}

		usage := Usage{InputTokens: response.Usage.InputTokens, OutputTokens: response.Usage.OutputTokens}
		result.Usage = result.Usage.Add(usage)
		logrus.WithFields(logrus.Fields{
			"provider":      providerAnthropic,
			"model":         ac.model,
			"input_tokens":  usage.InputTokens,
			"output_tokens": usage.OutputTokens,
			"stop_reason":   response.StopReason,
		}).Debug("Model response received")

		var toolResults []anthropic.ContentBlockParamUnion
		for _, content := range response.Content {
			switch block := content.AsAny().(type) {
			case anthropic.TextBlock:
				if block.Text != "" {
					result.Items = append(result.Items, TextContent{Text: block.Text})
				}
			case anthropic.ToolUseBlock:
				result.Items = append(result.Items, FunctionCallContent{ID: block.ID, Name: block.Name, Arguments: string(block.Input)})
				toolResult, err := ac.tools.Dispatch(ctx, block.Name, block.Input)
				if err != nil {
					return Message{}, err
				}
				result.Items = append(result.Items, FunctionResultContent{CallID: block.ID, Result: toolResult.Content, IsError: toolResult.IsError})
				toolResults = append(toolResults, anthropic.NewToolResultBlock(block.ID, toolResult.Content, toolResult.IsError))
			}
		}

		if response.StopReason != anthropic.StopReasonToolUse || len(toolResults) == 0 {
			break
		}
		params.Messages = append(params.Messages, response.ToParam(), anthropic.NewUserMessage(toolResults...))
	}

	return result, nil
}

// toAnthropicMessages converts a history to request messages. The API requires alternating roles starting with the
// user and a final user turn, so consecutive messages with the same role are merged and placeholders are inserted
// where needed
func toAnthropicMessages(history []Message) []anthropic.MessageParam {
	var params []anthropic.MessageParam
	var lastRole Role
	for _, msg := range history {
		text := transcriptText(msg)
		if text == "" {
			continue
		}
		block := anthropic.NewTextBlock(text)
		if len(params) > 0 && msg.Role == lastRole {
			params[len(params)-1].Content = append(params[len(params)-1].Content, block)
			continue
		}
		if msg.Role == RoleUser {
			params = append(params, anthropic.NewUserMessage(block))
		} else {
			if len(params) == 0 {
				// The first message must come from the user
				params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock("(conversation start)")))
			}
			params = append(params, anthropic.NewAssistantMessage(block))
		}
		lastRole = msg.Role
	}
	if len(params) == 0 || lastRole == RoleAgent {
		params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock("(continue)")))
	}
	return params
}

// transcriptText renders the text of a message as it should appear in a model's context. Other speakers' messages
// arrive with the user role and their author prefixed so the model can tell speakers apart
func transcriptText(msg Message) string {
	content := msg.Content()
	if content == "" {
		return ""
	}
	if msg.Role == RoleUser && msg.AuthorName != "" {
		return fmt.Sprintf("%s: %s", msg.AuthorName, content)
	}
	return content
}

func toAnthropicTool(def tools.Definition) anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        def.Name,
		Description: anthropic.String(def.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: def.InputSchema.Properties(),
			Required:   def.InputSchema.Required(),
		},
	}
}
