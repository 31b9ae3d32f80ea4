// Package ai provides the language model boundary: chat messages, their content items, and clients that turn a
// message history plus instructions into a single generated message.
package ai

import (
	"context"
	"strings"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "assistant"
)

func (r Role) String() string {
	return string(r)
}

// Message is a single entry of a conversation. Messages are immutable once appended to a conversation log
type Message struct {
	ID         string            `json:"id,omitempty"`
	Sequence   int64             `json:"sequence"`
	Role       Role              `json:"role"`
	AuthorName string            `json:"authorName,omitempty"` // Empty for user messages
	Items      []ContentItem     `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Usage      Usage             `json:"usage"`
}

// Usage reports the token consumption of the remote call(s) that produced a message
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
}

// Add returns the sum of two usages
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// NewUserMessage creates a user message with a single text item
func NewUserMessage(text string) Message {
	return Message{
		Role:  RoleUser,
		Items: []ContentItem{TextContent{Text: text}},
	}
}

// NewAgentMessage creates an agent message with a single text item
func NewAgentMessage(author string, text string) Message {
	return Message{
		Role:       RoleAgent,
		AuthorName: author,
		Items:      []ContentItem{TextContent{Text: text}},
	}
}

// Content returns the concatenated text items of the message
func (m Message) Content() string {
	var parts []string
	for _, item := range m.Items {
		if text, ok := item.(TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// IsCode reports whether the message has been marked as containing code
func (m Message) IsCode() bool {
	_, ok := m.Metadata[MetadataCode]
	return ok
}

// MetadataCode is the metadata key that marks a message as containing code
const MetadataCode = "code"

// LanguageModelClient generates the next message of a conversation. Implementations may be slow and may fail; a
// failed call returns a *RemoteCallError and no message
type LanguageModelClient interface {
	// Generate produces one message given the conversation history and instructions for the speaker. The returned
	// message has its role set to RoleAgent and no author or sequence number; callers assign those
	Generate(ctx context.Context, history []Message, instructions string) (Message, error)
}
