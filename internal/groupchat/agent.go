package groupchat

import (
	"context"
	"fmt"

	"github.com/cchalm/groupchat/internal/ai"
)

// Agent is a named participant that can produce the next message of a conversation
type Agent interface {
	Name() string
	// Invoke generates a message given the full history. The returned message is authored by the agent and has no
	// sequence number
	Invoke(ctx context.Context, history []ai.Message) (ai.Message, error)
}

// ChatAgent is an Agent backed by a language model and fixed instructions
type ChatAgent struct {
	name         string
	instructions string
	client       ai.LanguageModelClient
}

func NewChatAgent(name string, instructions string, client ai.LanguageModelClient) *ChatAgent {
	return &ChatAgent{
		name:         name,
		instructions: instructions,
		client:       client,
	}
}

func (ca *ChatAgent) Name() string {
	return ca.name
}

func (ca *ChatAgent) Instructions() string {
	return ca.instructions
}

func (ca *ChatAgent) Invoke(ctx context.Context, history []ai.Message) (ai.Message, error) {
	msg, err := ca.client.Generate(ctx, perspectiveOf(ca.name, history), ca.instructions)
	if err != nil {
		return ai.Message{}, fmt.Errorf("agent %s failed to respond: %w", ca.name, err)
	}
	msg.Role = ai.RoleAgent
	msg.AuthorName = ca.name
	msg.Sequence = 0
	return msg, nil
}

// perspectiveOf returns the history as seen by the named agent: messages of other agents are presented as user
// messages, keeping their author names
func perspectiveOf(name string, history []ai.Message) []ai.Message {
	view := make([]ai.Message, 0, len(history))
	for _, msg := range history {
		if msg.Role == ai.RoleAgent && msg.AuthorName != name {
			msg.Role = ai.RoleUser
		}
		view = append(view, msg)
	}
	return view
}
