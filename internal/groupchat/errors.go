package groupchat

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned when a chat is invoked, or seeded, after its first invocation. Chats are not
	// resumable; construct a new one instead
	ErrAlreadyStarted = errors.New("chat has already been invoked")

	// ErrStopped is the outcome error of a chat whose consumer stopped reading messages before it finished
	ErrStopped = errors.New("chat stopped by caller")
)

// InvalidSequenceError is returned when a message is appended out of order. It indicates a programming error
type InvalidSequenceError struct {
	Sequence int64 // Sequence number of the rejected message
	Last     int64 // Sequence number of the last message in the log
}

func (ise *InvalidSequenceError) Error() string {
	return fmt.Sprintf("invalid message sequence number %d: must be greater than %d", ise.Sequence, ise.Last)
}

// StrategyParseError is returned when a strategy's model response can't be parsed into a decision
type StrategyParseError struct {
	Strategy string
	Response string
	Reason   string
}

func (spe *StrategyParseError) Error() string {
	return fmt.Sprintf("failed to parse %s strategy response %q: %s", spe.Strategy, spe.Response, spe.Reason)
}
