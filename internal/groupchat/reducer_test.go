package groupchat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cchalm/groupchat/internal/ai"
)

func TestTruncationReducer_WindowCoversHistory(t *testing.T) {
	for k := 1; k <= 5; k++ {
		for _, window := range []int{k, k + 1, k + 10} {
			cl := NewConversationLog()
			for _, msg := range messages(k) {
				assert.NoError(t, cl.Append(msg))
			}

			reduced := NewTruncationReducer(window).Reduce(cl.Messages())
			assert.Equal(t, cl.Messages(), reduced, "k=%d window=%d", k, window)
		}
	}
}

func TestTruncationReducer_KeepsMostRecent(t *testing.T) {
	history := messages(5)

	reduced := NewTruncationReducer(2).Reduce(history)

	assert.Equal(t, history[3:], reduced)
}

func TestTruncationReducer_DefaultWindow(t *testing.T) {
	history := messages(3)

	for _, window := range []int{0, -4} {
		reducer := NewTruncationReducer(window)
		assert.Equal(t, DefaultHistoryWindow, reducer.Window())
		assert.Equal(t, history[2:], reducer.Reduce(history))
	}
}

func TestTruncationReducer_EmptyHistory(t *testing.T) {
	reduced := NewTruncationReducer(3).Reduce(nil)
	assert.Empty(t, reduced)
}

func TestTruncationReducer_DoesNotModifyInput(t *testing.T) {
	history := messages(4)

	reduced := NewTruncationReducer(2).Reduce(history)
	reduced[0] = ai.NewUserMessage("mutated")

	assert.Equal(t, messages(4), history)
}

func TestNamesOnly(t *testing.T) {
	msg := ai.NewAgentMessage("CopyWriter", "Eggs marks the spot.")
	msg.Sequence = 7

	projected := namesOnly([]ai.Message{msg})

	assert.Equal(t, []ai.Message{{Sequence: 7, Role: ai.RoleAgent, AuthorName: "CopyWriter"}}, projected)
	assert.Equal(t, "Eggs marks the spot.", msg.Content(), "input must be unchanged")
}
