package groupchat

import (
	"maps"
	"slices"

	"github.com/cchalm/groupchat/internal/ai"
)

// ConversationLog is the append-only, ordered record of a chat. Sequence numbers are strictly increasing
type ConversationLog struct {
	messages []ai.Message
}

func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

// Append adds a message to the end of the log. The message's sequence number must be greater than that of the last
// message, otherwise an *InvalidSequenceError is returned and the log is unchanged
func (cl *ConversationLog) Append(msg ai.Message) error {
	if last, ok := cl.Last(); ok && msg.Sequence <= last.Sequence {
		return &InvalidSequenceError{Sequence: msg.Sequence, Last: last.Sequence}
	}
	cl.messages = append(cl.messages, cloneMessage(msg))
	return nil
}

// NextSequence returns the smallest sequence number the next message may carry. Sequence numbers start at 1
func (cl *ConversationLog) NextSequence() int64 {
	if last, ok := cl.Last(); ok {
		return last.Sequence + 1
	}
	return 1
}

// Last returns the most recently appended message
func (cl *ConversationLog) Last() (ai.Message, bool) {
	if len(cl.messages) == 0 {
		return ai.Message{}, false
	}
	return cloneMessage(cl.messages[len(cl.messages)-1]), true
}

// Len returns the number of messages in the log
func (cl *ConversationLog) Len() int {
	return len(cl.messages)
}

// Messages returns a copy of the log's messages in order
func (cl *ConversationLog) Messages() []ai.Message {
	msgs := make([]ai.Message, len(cl.messages))
	for i, msg := range cl.messages {
		msgs[i] = cloneMessage(msg)
	}
	return msgs
}

// cloneMessage copies a message so that neither copy shares items, item bytes or metadata with the other
func cloneMessage(msg ai.Message) ai.Message {
	msg.Metadata = maps.Clone(msg.Metadata)
	if msg.Items == nil {
		return msg
	}
	items := slices.Clone(msg.Items)
	for i, item := range items {
		if image, ok := item.(ai.ImageContent); ok {
			image.Data = slices.Clone(image.Data)
			items[i] = image
		}
	}
	msg.Items = items
	return msg
}
