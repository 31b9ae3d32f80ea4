package groupchat

import (
	_ "embed"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/cchalm/groupchat/internal/ai"
)

//go:embed default_roster.yaml
var defaultRosterYAML []byte

// Roster is the declarative description of a chat: its agents and strategies
type Roster struct {
	Agents        []AgentSpec     `yaml:"agents"`
	Selection     SelectionSpec   `yaml:"selection"`
	Termination   TerminationSpec `yaml:"termination"`
	HistoryWindow int             `yaml:"historyWindow"`
}

type AgentSpec struct {
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
}

type SelectionSpec struct {
	InitialAgent     string `yaml:"initialAgent"`
	EvaluateNameOnly bool   `yaml:"evaluateNameOnly"`
	Prompt           string `yaml:"prompt"` // Empty selects agents in round-robin order
}

type TerminationSpec struct {
	AuthorizedAgents  []string `yaml:"authorizedAgents"`
	MaximumIterations int      `yaml:"maximumIterations"`
	Prompt            string   `yaml:"prompt"` // Empty ends the chat only at the iteration cap
}

// DefaultRoster returns the built-in copywriter and art director chat
func DefaultRoster() (Roster, error) {
	return ParseRoster(defaultRosterYAML)
}

// LoadRoster reads a roster from a YAML file
func LoadRoster(path string) (Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(b)
}

// ParseRoster parses and validates a YAML roster
func ParseRoster(b []byte) (Roster, error) {
	var roster Roster
	if err := yaml.Unmarshal(b, &roster); err != nil {
		return Roster{}, fmt.Errorf("failed to unmarshal roster: %w", err)
	}
	if err := roster.Validate(); err != nil {
		return Roster{}, err
	}
	return roster, nil
}

// Validate checks the roster for missing or inconsistent fields
func (r Roster) Validate() error {
	if len(r.Agents) == 0 {
		return fmt.Errorf("roster has no agents")
	}
	names := map[string]bool{}
	for i, agent := range r.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
		if names[agent.Name] {
			return fmt.Errorf("duplicate agent name: %s", agent.Name)
		}
		names[agent.Name] = true
	}
	if r.Selection.InitialAgent != "" && !names[r.Selection.InitialAgent] {
		return fmt.Errorf("initial agent %s is not in the roster", r.Selection.InitialAgent)
	}
	for _, name := range r.Termination.AuthorizedAgents {
		if !names[name] {
			return fmt.Errorf("authorized agent %s is not in the roster", name)
		}
	}
	if r.Termination.MaximumIterations < 1 {
		return fmt.Errorf("termination.maximumIterations must be positive")
	}
	return nil
}

// AgentNames returns the names of the roster's agents in order
func (r Roster) AgentNames() []string {
	names := make([]string, 0, len(r.Agents))
	for _, agent := range r.Agents {
		names = append(names, agent.Name)
	}
	return names
}

// Build creates an orchestrator for the roster. All agents and strategy functions share the given client. The tracer
// may be nil
func (r Roster) Build(client ai.LanguageModelClient, tracer trace.Tracer) (*Orchestrator, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	reducer := NewTruncationReducer(r.HistoryWindow)

	var selectionFn *StrategyFunction
	if r.Selection.Prompt != "" {
		fn, err := NewStrategyFunction(selectionStrategyName, r.Selection.Prompt, client, reducer, tracer)
		if err != nil {
			return nil, err
		}
		selectionFn = fn
	}
	selection, err := NewSelectionStrategy(SelectionConfig{
		InitialAgent:     r.Selection.InitialAgent,
		EligibleAgents:   r.AgentNames(),
		EvaluateNameOnly: r.Selection.EvaluateNameOnly,
	}, selectionFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create selection strategy: %w", err)
	}

	var terminationFn *StrategyFunction
	if r.Termination.Prompt != "" {
		fn, err := NewStrategyFunction(terminationStrategyName, r.Termination.Prompt, client, reducer, tracer)
		if err != nil {
			return nil, err
		}
		terminationFn = fn
	}
	termination, err := NewTerminationStrategy(TerminationConfig{
		AuthorizedAgents:  r.Termination.AuthorizedAgents,
		MaximumIterations: r.Termination.MaximumIterations,
	}, terminationFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create termination strategy: %w", err)
	}

	agents := make([]Agent, 0, len(r.Agents))
	for _, spec := range r.Agents {
		agents = append(agents, NewChatAgent(spec.Name, spec.Instructions, client))
	}

	return NewOrchestrator(agents, Settings{
		Selection:   selection,
		Termination: termination,
		Tracer:      tracer,
	})
}
