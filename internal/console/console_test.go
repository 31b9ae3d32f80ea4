package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/groupchat"
)

func TestWriteMessage(t *testing.T) {
	testCases := []struct {
		name     string
		msg      ai.Message
		expected string
	}{
		{
			name:     "user",
			msg:      ai.NewUserMessage("concept: egg carton maps"),
			expected: "\n# user: concept: egg carton maps\n",
		},
		{
			name:     "agent",
			msg:      ai.NewAgentMessage("CopyWriter", "Fold here."),
			expected: "\n# assistant - CopyWriter: Fold here.\n",
		},
		{
			name:     "anonymous agent",
			msg:      ai.Message{Role: ai.RoleAgent, Items: []ai.ContentItem{ai.TextContent{Text: "hi"}}},
			expected: "\n# assistant - *: hi\n",
		},
		{
			name: "code",
			msg: ai.Message{
				Role:       ai.RoleAgent,
				AuthorName: "Coder",
				Items:      []ai.ContentItem{ai.TextContent{Text: "fmt.Println()"}},
				Metadata:   map[string]string{ai.MetadataCode: "go"},
			},
			expected: "\n# assistant - Coder:\n  [CODE]\nfmt.Println()\n",
		},
		{
			name: "items",
			msg: ai.Message{
				Role:       ai.RoleAgent,
				AuthorName: "Host",
				Items: []ai.ContentItem{
					ai.FunctionCallContent{ID: "call_1", Name: "get_specials"},
					ai.FunctionResultContent{CallID: "call_1", Result: "Clam Chowder"},
					ai.TextContent{Text: "The soup is clam chowder."},
					ai.ImageContent{URI: "https://example.com/soup.png"},
				},
			},
			expected: "\n# assistant - Host: The soup is clam chowder.\n" +
				"  [FunctionCallContent] call_1\n" +
				"  [FunctionResultContent] call_1 - Clam Chowder\n" +
				"  [ImageContent] https://example.com/soup.png\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewRenderer(&buf, true).WriteMessage(tc.msg))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestWriteOutcome(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf, true)

	require.NoError(t, renderer.WriteOutcome(groupchat.Outcome{
		Phase:  groupchat.PhaseCompleted,
		Reason: groupchat.ReasonApproved,
		Turns:  2,
	}))
	assert.Equal(t, "\n[IS COMPLETED: true] approved after 2 turns\n", buf.String())

	buf.Reset()
	require.NoError(t, renderer.WriteOutcome(groupchat.Outcome{
		Phase:  groupchat.PhaseFailed,
		Reason: groupchat.ReasonFailed,
		Turns:  3,
		Err:    errors.New("anthropic call failed: overloaded"),
	}))
	assert.Equal(t, "\n[IS COMPLETED: false] failed after 3 turns: anthropic call failed: overloaded\n", buf.String())
}
