package groupchat

import (
	"context"
	"strings"

	"github.com/cchalm/groupchat/internal/ai"
)

// clientStub is a LanguageModelClient that answers with a function of the request and records every call
type clientStub struct {
	respond func(prompt string, instructions string) (string, error)
	prompts []string
}

func (cs *clientStub) Generate(_ context.Context, history []ai.Message, instructions string) (ai.Message, error) {
	var prompt string
	if len(history) > 0 {
		prompt = history[len(history)-1].Content()
	}
	cs.prompts = append(cs.prompts, prompt)
	text, err := cs.respond(prompt, instructions)
	if err != nil {
		return ai.Message{}, err
	}
	return ai.Message{Role: ai.RoleAgent, Items: []ai.ContentItem{ai.TextContent{Text: text}}}, nil
}

func (cs *clientStub) calls() int {
	return len(cs.prompts)
}

// answering returns a client stub that always answers with the given text
func answering(text string) *clientStub {
	return &clientStub{respond: func(string, string) (string, error) { return text, nil }}
}

// failing returns a client stub whose calls always fail
func failing(err error) *clientStub {
	return &clientStub{respond: func(string, string) (string, error) { return "", err }}
}

// historySection returns the part of a strategy prompt after "History:"
func historySection(prompt string) string {
	_, after, _ := strings.Cut(prompt, "History:")
	return after
}

// agentStub is an Agent with scripted replies. It records the length of the history it was given on each call
type agentStub struct {
	name           string
	replies        []string
	err            error
	historyLengths []int
}

func (as *agentStub) Name() string {
	return as.name
}

func (as *agentStub) Invoke(_ context.Context, history []ai.Message) (ai.Message, error) {
	as.historyLengths = append(as.historyLengths, len(history))
	if as.err != nil {
		return ai.Message{}, as.err
	}
	reply := as.replies[min(len(as.historyLengths)-1, len(as.replies)-1)]
	return ai.NewAgentMessage(as.name, reply), nil
}

func (as *agentStub) calls() int {
	return len(as.historyLengths)
}

const (
	testSelectionPrompt = `Choose only from these participants:
{{range .Agents}}- {{.}}
{{end}}
History:
{{.History}}`

	testTerminationPrompt = `Determine if the copy has been accepted. If so, respond with a single word: yes

History:
{{.History}}`
)

// messages creates a sequence of user messages numbered 1..n
func messages(n int) []ai.Message {
	var msgs []ai.Message
	for i := 1; i <= n; i++ {
		msg := ai.NewUserMessage(strings.Repeat("x", i))
		msg.Sequence = int64(i)
		msgs = append(msgs, msg)
	}
	return msgs
}
