package groupchat

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

const terminationStrategyName = "termination"

// TerminationConfig configures when a chat ends
type TerminationConfig struct {
	// AuthorizedAgents are the agents whose turns are evaluated for approval. Turns of other agents never end the chat
	// by approval
	AuthorizedAgents []string
	// MaximumIterations is the hard cap on the number of agent turns
	MaximumIterations int
}

// TerminationDecision is the result of a termination check
type TerminationDecision struct {
	Terminate bool
	Reason    Reason // ReasonNone unless Terminate is set
}

// TerminationStrategy decides after each turn whether the chat is over
type TerminationStrategy struct {
	config   TerminationConfig
	function *StrategyFunction // May be nil, in which case only the iteration cap ends the chat
}

func NewTerminationStrategy(config TerminationConfig, function *StrategyFunction) (*TerminationStrategy, error) {
	if config.MaximumIterations < 1 {
		return nil, fmt.Errorf("maximum iterations must be positive, got %d", config.MaximumIterations)
	}
	config.AuthorizedAgents = append([]string(nil), config.AuthorizedAgents...)
	return &TerminationStrategy{
		config:   config,
		function: function,
	}, nil
}

// Config returns the strategy's configuration
func (ts *TerminationStrategy) Config() TerminationConfig {
	return ts.config
}

// ShouldTerminate evaluates the chat state after a turn. Reaching the iteration cap always terminates. Otherwise only
// a turn by an authorized agent is evaluated, with one model call; an unparseable or failed evaluation counts as "not
// yet"
func (ts *TerminationStrategy) ShouldTerminate(ctx context.Context, state State) TerminationDecision {
	if state.TurnCount >= ts.config.MaximumIterations {
		return TerminationDecision{Terminate: true, Reason: ReasonMaxIterationsReached}
	}

	log := logrus.WithFields(logrus.Fields{
		"turn":  state.TurnCount,
		"agent": state.LastSpeaker,
	})

	if !slices.Contains(ts.config.AuthorizedAgents, state.LastSpeaker) {
		log.WithField("event", "termination_short_circuit").Debug("Skipping termination evaluation for unauthorized agent")
		return TerminationDecision{}
	}
	if ts.function == nil {
		log.WithField("event", "termination_short_circuit").Debug("No termination function, continuing until the iteration cap")
		return TerminationDecision{}
	}

	response, err := ts.function.Evaluate(ctx, state.History, nil, false)
	if err != nil {
		log.WithError(err).WithField("event", "termination_evaluation_failed").Warn("Termination evaluation failed, continuing the chat")
		return TerminationDecision{}
	}
	if ParseApproval(response) {
		return TerminationDecision{Terminate: true, Reason: ReasonApproved}
	}
	return TerminationDecision{}
}
