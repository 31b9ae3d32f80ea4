package groupchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/groupchat/internal/ai"
)

func TestParseApproval(t *testing.T) {
	testCases := []struct {
		response string
		expected bool
	}{
		{"yes", true},
		{"Yes", true},
		{"YES.", true},
		{"  yes\n", true},
		{"Yes, the copy is approved", true},
		{"no", false},
		{"approved", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParseApproval(tc.response), "response %q", tc.response)
	}
}

func TestParseSelection(t *testing.T) {
	eligible := []string{"CopyWriter", "ArtDirector"}

	name, err := ParseSelection("  ArtDirector\n", eligible)
	require.NoError(t, err)
	assert.Equal(t, "ArtDirector", name)

	for _, response := range []string{"", "  ", "Editor", "artdirector", "ArtDirector."} {
		_, err := ParseSelection(response, eligible)
		var spe *StrategyParseError
		require.ErrorAs(t, err, &spe, "response %q", response)
		assert.Equal(t, selectionStrategyName, spe.Strategy)
		assert.Equal(t, response, spe.Response)
	}
}

func TestStrategyFunction_Render(t *testing.T) {
	fn, err := NewStrategyFunction("selection", testSelectionPrompt, answering(""), NewTruncationReducer(2), nil)
	require.NoError(t, err)

	history := []ai.Message{
		ai.NewUserMessage("concept: egg carton maps"),
		ai.NewAgentMessage("CopyWriter", "Fold here."),
		ai.NewAgentMessage("ArtDirector", "Needs more yolk."),
	}
	agents := []string{"CopyWriter", "ArtDirector"}

	prompt, err := fn.Render(history, agents, false)
	require.NoError(t, err)
	assert.Equal(t, `Choose only from these participants:
- CopyWriter
- ArtDirector

History:
assistant - CopyWriter: Fold here.
assistant - ArtDirector: Needs more yolk.`, prompt)

	prompt, err = fn.Render(history, agents, true)
	require.NoError(t, err)
	assert.Contains(t, prompt, "assistant - CopyWriter\nassistant - ArtDirector")
	assert.NotContains(t, prompt, "yolk")
}

func TestStrategyFunction_InvalidTemplate(t *testing.T) {
	_, err := NewStrategyFunction("selection", "{{.History", answering(""), nil, nil)
	assert.Error(t, err)
}

func TestStrategyFunction_UnknownField(t *testing.T) {
	fn, err := NewStrategyFunction("selection", "{{.Participants}}", answering(""), nil, nil)
	require.NoError(t, err)

	_, err = fn.Render(messages(1), nil, false)
	assert.Error(t, err)
}

func TestStrategyFunction_Evaluate(t *testing.T) {
	client := answering(" yes ")
	fn, err := NewStrategyFunction("termination", testTerminationPrompt, client, NewTruncationReducer(1), nil)
	require.NoError(t, err)

	history := []ai.Message{
		ai.NewAgentMessage("CopyWriter", "Fold here."),
		ai.NewAgentMessage("ArtDirector", "Approved."),
	}
	response, err := fn.Evaluate(context.Background(), history, nil, false)
	require.NoError(t, err)

	assert.Equal(t, " yes ", response)
	require.Equal(t, 1, client.calls())
	assert.Contains(t, client.prompts[0], "assistant - ArtDirector: Approved.")
	assert.NotContains(t, client.prompts[0], "Fold here.")
}

func TestStrategyFunction_EvaluateError(t *testing.T) {
	remoteErr := ai.NewRemoteCallError("test", errors.New("connection reset"))
	fn, err := NewStrategyFunction("termination", testTerminationPrompt, failing(remoteErr), nil, nil)
	require.NoError(t, err)

	_, err = fn.Evaluate(context.Background(), messages(1), nil, false)

	var rce *ai.RemoteCallError
	assert.ErrorAs(t, err, &rce)
}
