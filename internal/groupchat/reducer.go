package groupchat

import (
	"slices"

	"github.com/cchalm/groupchat/internal/ai"
)

// DefaultHistoryWindow is the number of messages kept by a TruncationReducer created with a non-positive window: just
// the most recent message
const DefaultHistoryWindow = 1

// HistoryReducer projects a history onto a smaller view for strategy evaluation. Reducers never modify their input
type HistoryReducer interface {
	Reduce(history []ai.Message) []ai.Message
}

// TruncationReducer keeps the last N messages of a history
type TruncationReducer struct {
	window int
}

func NewTruncationReducer(window int) TruncationReducer {
	if window < 1 {
		window = DefaultHistoryWindow
	}
	return TruncationReducer{window: window}
}

func (tr TruncationReducer) Window() int {
	return tr.window
}

// Reduce returns the last N messages, or the whole history if it is no longer than N
func (tr TruncationReducer) Reduce(history []ai.Message) []ai.Message {
	start := max(len(history)-tr.window, 0)
	return slices.Clone(history[start:])
}

// namesOnly strips message content, leaving only roles and author names
func namesOnly(history []ai.Message) []ai.Message {
	projected := make([]ai.Message, 0, len(history))
	for _, msg := range history {
		projected = append(projected, ai.Message{
			Sequence:   msg.Sequence,
			Role:       msg.Role,
			AuthorName: msg.AuthorName,
		})
	}
	return projected
}
