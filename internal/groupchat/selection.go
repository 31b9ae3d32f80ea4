package groupchat

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const selectionStrategyName = "selection"

// SelectionConfig configures which agents may speak
type SelectionConfig struct {
	// InitialAgent speaks first. Defaults to the first eligible agent
	InitialAgent string
	// EligibleAgents is the ordered set of agents that may be selected. The order defines the round-robin fallback
	EligibleAgents []string
	// EvaluateNameOnly strips message content from the history shown to the selection prompt
	EvaluateNameOnly bool
}

// SelectionStrategy chooses the agent that takes the next turn. The first turn always goes to the initial agent;
// later turns are chosen by the strategy function. When the function's answer can't be parsed, or when there is no
// function, the agent after the last speaker in eligible order is chosen
type SelectionStrategy struct {
	config   SelectionConfig
	function *StrategyFunction // May be nil
}

func NewSelectionStrategy(config SelectionConfig, function *StrategyFunction) (*SelectionStrategy, error) {
	if len(config.EligibleAgents) == 0 {
		return nil, fmt.Errorf("selection strategy requires at least one eligible agent")
	}
	seen := map[string]bool{}
	for _, name := range config.EligibleAgents {
		if seen[name] {
			return nil, fmt.Errorf("duplicate eligible agent: %s", name)
		}
		seen[name] = true
	}
	if config.InitialAgent == "" {
		config.InitialAgent = config.EligibleAgents[0]
	} else if !seen[config.InitialAgent] {
		return nil, fmt.Errorf("initial agent %s is not an eligible agent", config.InitialAgent)
	}
	config.EligibleAgents = append([]string(nil), config.EligibleAgents...)

	return &SelectionStrategy{
		config:   config,
		function: function,
	}, nil
}

// Config returns the strategy's configuration
func (ss *SelectionStrategy) Config() SelectionConfig {
	return ss.config
}

// SelectNext returns the name of the agent that takes the next turn. Errors are only returned when the strategy
// function's model call fails
func (ss *SelectionStrategy) SelectNext(ctx context.Context, state State) (string, error) {
	if state.TurnCount == 0 {
		return ss.config.InitialAgent, nil
	}
	if ss.function == nil {
		return ss.roundRobin(state.LastSpeaker), nil
	}

	response, err := ss.function.Evaluate(ctx, state.History, ss.config.EligibleAgents, ss.config.EvaluateNameOnly)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate selection strategy: %w", err)
	}

	name, err := ParseSelection(response, ss.config.EligibleAgents)
	var spe *StrategyParseError
	if errors.As(err, &spe) {
		fallback := ss.roundRobin(state.LastSpeaker)
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":        "selection_fallback",
			"turn":         state.TurnCount + 1,
			"last_speaker": state.LastSpeaker,
			"agent":        fallback,
		}).Warn("Selection response did not name an eligible agent, falling back to round-robin order")
		return fallback, nil
	} else if err != nil {
		return "", err
	}
	return name, nil
}

// roundRobin returns the eligible agent following the last speaker, or the first eligible agent if the last speaker
// is unknown
func (ss *SelectionStrategy) roundRobin(lastSpeaker string) string {
	agents := ss.config.EligibleAgents
	for i, name := range agents {
		if name == lastSpeaker {
			return agents[(i+1)%len(agents)]
		}
	}
	return agents[0]
}
