// Package groupchat runs turn-taking conversations between language model agents. A selection strategy picks the
// speaker of each turn and a termination strategy decides when the conversation is over; both may consult a model
// through a strategy function evaluated against a reduced view of the conversation.
package groupchat

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cchalm/groupchat/internal/ai"
)

// Phase is the lifecycle phase of a chat
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseCompleted // Terminal: approved or iteration cap reached
	PhaseFailed    // Terminal: failed or cancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Reason explains why a chat reached a terminal phase
type Reason int

const (
	ReasonNone Reason = iota
	ReasonApproved
	ReasonMaxIterationsReached
	ReasonFailed
	ReasonCancelled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonApproved:
		return "approved"
	case ReasonMaxIterationsReached:
		return "max iterations reached"
	case ReasonFailed:
		return "failed"
	case ReasonCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// State is the view of a chat handed to strategies
type State struct {
	History     []ai.Message
	TurnCount   int
	LastSpeaker string // Empty before the first agent turn
}

// Outcome describes how a chat ended
type Outcome struct {
	Phase  Phase
	Reason Reason
	Turns  int
	Err    error // Set for ReasonFailed and ReasonCancelled
}

// Settings configures an Orchestrator
type Settings struct {
	Selection   *SelectionStrategy
	Termination *TerminationStrategy
	Tracer      trace.Tracer // May be nil
}

// Orchestrator owns the conversation log of a chat between agents and runs its turns
type Orchestrator struct {
	agents      map[string]Agent
	selection   *SelectionStrategy
	termination *TerminationStrategy
	tracer      trace.Tracer

	id          string
	log         *ConversationLog
	phase       Phase
	reason      Reason
	err         error
	turnCount   int
	lastSpeaker string
}

// NewOrchestrator creates a chat between the given agents. Every agent named by the strategies must be one of the
// agents
func NewOrchestrator(agents []Agent, settings Settings) (*Orchestrator, error) {
	if settings.Selection == nil {
		return nil, fmt.Errorf("selection strategy is required")
	}
	if settings.Termination == nil {
		return nil, fmt.Errorf("termination strategy is required")
	}

	byName := make(map[string]Agent, len(agents))
	for _, agent := range agents {
		if _, ok := byName[agent.Name()]; ok {
			return nil, fmt.Errorf("duplicate agent name: %s", agent.Name())
		}
		byName[agent.Name()] = agent
	}
	for _, name := range settings.Selection.Config().EligibleAgents {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("eligible agent %s is not part of the chat", name)
		}
	}
	for _, name := range settings.Termination.Config().AuthorizedAgents {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("authorized agent %s is not part of the chat", name)
		}
	}

	tracer := settings.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Orchestrator{
		agents:      byName,
		selection:   settings.Selection,
		termination: settings.Termination,
		tracer:      tracer,

		id:  uuid.NewString(),
		log: NewConversationLog(),
	}, nil
}

// ID returns the chat's unique identifier
func (o *Orchestrator) ID() string {
	return o.id
}

// AddChatMessage seeds the chat before it is invoked. A zero sequence number is replaced with the next one in order
func (o *Orchestrator) AddChatMessage(msg ai.Message) error {
	if o.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}
	if msg.Sequence == 0 {
		msg.Sequence = o.log.NextSequence()
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return o.log.Append(msg)
}

// History returns a copy of the conversation so far
func (o *Orchestrator) History() []ai.Message {
	return o.log.Messages()
}

// Outcome returns the chat's current phase and, once terminal, why it ended
func (o *Orchestrator) Outcome() Outcome {
	return Outcome{
		Phase:  o.phase,
		Reason: o.reason,
		Turns:  o.turnCount,
		Err:    o.err,
	}
}

// IsComplete reports whether the chat ended by approval
func (o *Orchestrator) IsComplete() bool {
	return o.phase == PhaseCompleted && o.reason == ReasonApproved
}

// Done reports whether the chat reached any terminal phase
func (o *Orchestrator) Done() bool {
	return o.phase == PhaseCompleted || o.phase == PhaseFailed
}

// Invoke runs the chat, yielding each agent message as soon as it has been appended to the log. On failure the error
// is yielded once and the sequence ends. Cancelling ctx takes effect between turns, or aborts the in-flight model call
// without appending anything. A chat can be invoked only once
func (o *Orchestrator) Invoke(ctx context.Context) iter.Seq2[ai.Message, error] {
	return func(yield func(ai.Message, error) bool) {
		if o.phase != PhaseNotStarted {
			yield(ai.Message{}, ErrAlreadyStarted)
			return
		}
		o.phase = PhaseRunning

		ctx, span := o.tracer.Start(ctx, "groupchat.invoke", trace.WithAttributes(
			attribute.String("chat.id", o.id),
		))
		defer func() {
			span.SetAttributes(
				attribute.String("chat.outcome", o.reason.String()),
				attribute.Int("chat.turns", o.turnCount),
			)
			if o.err != nil {
				span.SetStatus(codes.Error, o.err.Error())
			}
			span.End()
		}()

		log := logrus.WithField("chat", o.id)
		log.WithField("agents", len(o.agents)).Info("Starting chat")

		for {
			if err := ctx.Err(); err != nil {
				o.halt(ReasonCancelled, err)
				yield(ai.Message{}, err)
				return
			}

			msg, err := o.takeTurn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					o.halt(ReasonCancelled, err)
				} else {
					o.halt(ReasonFailed, err)
				}
				yield(ai.Message{}, err)
				return
			}

			if !yield(msg, nil) {
				o.halt(ReasonCancelled, ErrStopped)
				return
			}

			decision := o.termination.ShouldTerminate(ctx, o.state())
			if decision.Terminate {
				o.phase = PhaseCompleted
				o.reason = decision.Reason
				log.WithFields(logrus.Fields{
					"event":  "chat_completed",
					"reason": o.reason.String(),
					"turns":  o.turnCount,
				}).Info("Chat completed")
				return
			}
		}
	}
}

// takeTurn selects the next speaker, has it generate a message and appends the message to the log
func (o *Orchestrator) takeTurn(ctx context.Context) (ai.Message, error) {
	turn := o.turnCount + 1
	ctx, span := o.tracer.Start(ctx, "groupchat.turn", trace.WithAttributes(
		attribute.Int("chat.turn", turn),
	))
	defer span.End()

	name, err := o.selection.SelectNext(ctx, o.state())
	if err != nil {
		span.RecordError(err)
		return ai.Message{}, fmt.Errorf("failed to select agent for turn %d: %w", turn, err)
	}
	span.SetAttributes(attribute.String("chat.agent", name))

	agent, ok := o.agents[name]
	if !ok {
		return ai.Message{}, fmt.Errorf("selected agent %s is not part of the chat", name)
	}

	msg, err := agent.Invoke(ctx, o.log.Messages())
	if err != nil {
		span.RecordError(err)
		return ai.Message{}, fmt.Errorf("failed to generate turn %d: %w", turn, err)
	}
	if err := ctx.Err(); err != nil {
		return ai.Message{}, err
	}

	msg.Sequence = o.log.NextSequence()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if err := o.log.Append(msg); err != nil {
		return ai.Message{}, fmt.Errorf("failed to record turn %d: %w", turn, err)
	}
	o.turnCount = turn
	o.lastSpeaker = name

	logrus.WithFields(logrus.Fields{
		"chat":          o.id,
		"turn":          turn,
		"agent":         name,
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	}).Debug("Agent took a turn")
	return msg, nil
}

func (o *Orchestrator) state() State {
	return State{
		History:     o.log.Messages(),
		TurnCount:   o.turnCount,
		LastSpeaker: o.lastSpeaker,
	}
}

func (o *Orchestrator) halt(reason Reason, err error) {
	o.phase = PhaseFailed
	o.reason = reason
	o.err = err

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"chat":   o.id,
		"event":  "chat_halted",
		"reason": reason.String(),
		"turns":  o.turnCount,
	})
	if reason == ReasonCancelled {
		entry.Info("Chat stopped")
	} else {
		entry.Error("Chat failed")
	}
}
