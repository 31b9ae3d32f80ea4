package groupchat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/groupchat/internal/ai"
)

func newTestTermination(t *testing.T, client ai.LanguageModelClient, config TerminationConfig) *TerminationStrategy {
	t.Helper()

	fn, err := NewStrategyFunction(terminationStrategyName, testTerminationPrompt, client, NewTruncationReducer(1), nil)
	require.NoError(t, err)
	termination, err := NewTerminationStrategy(config, fn)
	require.NoError(t, err)
	return termination
}

func TestShouldTerminate_OnlyAtIterationCapWithoutApproval(t *testing.T) {
	const maxIterations = 10
	client := answering("no")
	termination := newTestTermination(t, client, TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: maxIterations,
	})

	speakers := []string{"CopyWriter", "ArtDirector"}
	for turns := 1; turns < maxIterations; turns++ {
		state := State{
			History:     []ai.Message{ai.NewAgentMessage(speakers[(turns-1)%2], "more copy")},
			TurnCount:   turns,
			LastSpeaker: speakers[(turns-1)%2],
		}
		decision := termination.ShouldTerminate(context.Background(), state)
		assert.Equal(t, TerminationDecision{}, decision, "turn %d", turns)
	}

	decision := termination.ShouldTerminate(context.Background(), State{TurnCount: maxIterations, LastSpeaker: "ArtDirector"})
	assert.Equal(t, TerminationDecision{Terminate: true, Reason: ReasonMaxIterationsReached}, decision)
}

func TestShouldTerminate_ShortCircuitsUnauthorizedSpeaker(t *testing.T) {
	client := answering("yes")
	termination := newTestTermination(t, client, TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 10,
	})

	for _, speaker := range []string{"CopyWriter", "", "artdirector"} {
		decision := termination.ShouldTerminate(context.Background(), State{
			History:     []ai.Message{ai.NewAgentMessage(speaker, "approved")},
			TurnCount:   3,
			LastSpeaker: speaker,
		})
		assert.False(t, decision.Terminate, "speaker %q", speaker)
	}
	assert.Equal(t, 0, client.calls(), "unauthorized speakers must not be evaluated")
}

func TestShouldTerminate_ApprovalByAuthorizedSpeaker(t *testing.T) {
	client := &clientStub{respond: func(prompt string, _ string) (string, error) {
		if strings.Contains(historySection(prompt), "approved") {
			return "Yes", nil
		}
		return "No", nil
	}}
	termination := newTestTermination(t, client, TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 10,
	})

	rejected := termination.ShouldTerminate(context.Background(), State{
		History:     []ai.Message{ai.NewAgentMessage("ArtDirector", "Too wordy.")},
		TurnCount:   2,
		LastSpeaker: "ArtDirector",
	})
	assert.Equal(t, TerminationDecision{}, rejected)

	approved := termination.ShouldTerminate(context.Background(), State{
		History:     []ai.Message{ai.NewAgentMessage("ArtDirector", "This copy is approved.")},
		TurnCount:   4,
		LastSpeaker: "ArtDirector",
	})
	assert.Equal(t, TerminationDecision{Terminate: true, Reason: ReasonApproved}, approved)
	assert.Equal(t, 2, client.calls())
}

func TestShouldTerminate_CapTakesPrecedence(t *testing.T) {
	client := answering("yes")
	termination := newTestTermination(t, client, TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 4,
	})

	decision := termination.ShouldTerminate(context.Background(), State{TurnCount: 4, LastSpeaker: "ArtDirector"})

	assert.Equal(t, ReasonMaxIterationsReached, decision.Reason)
	assert.Equal(t, 0, client.calls())
}

func TestShouldTerminate_FailedEvaluationContinues(t *testing.T) {
	client := failing(ai.NewRemoteCallError("test", errors.New("timeout")))
	termination := newTestTermination(t, client, TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 10,
	})

	decision := termination.ShouldTerminate(context.Background(), State{TurnCount: 2, LastSpeaker: "ArtDirector"})

	assert.Equal(t, TerminationDecision{}, decision)
	assert.Equal(t, 1, client.calls())
}

func TestShouldTerminate_WithoutFunction(t *testing.T) {
	termination, err := NewTerminationStrategy(TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 2,
	}, nil)
	require.NoError(t, err)

	assert.False(t, termination.ShouldTerminate(context.Background(), State{TurnCount: 1, LastSpeaker: "ArtDirector"}).Terminate)
	assert.True(t, termination.ShouldTerminate(context.Background(), State{TurnCount: 2, LastSpeaker: "ArtDirector"}).Terminate)
}

func TestShouldTerminate_ShortCircuitLogsReason(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	termination, err := NewTerminationStrategy(TerminationConfig{
		AuthorizedAgents:  []string{"ArtDirector"},
		MaximumIterations: 10,
	}, nil)
	require.NoError(t, err)

	termination.ShouldTerminate(context.Background(), State{TurnCount: 1, LastSpeaker: "CopyWriter"})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "termination_short_circuit", hook.LastEntry().Data["event"])
	assert.Contains(t, hook.LastEntry().Message, "unauthorized")

	termination.ShouldTerminate(context.Background(), State{TurnCount: 2, LastSpeaker: "ArtDirector"})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "termination_short_circuit", hook.LastEntry().Data["event"])
	assert.NotContains(t, hook.LastEntry().Message, "unauthorized", "an authorized speaker is not reported as unauthorized")
}

func TestNewTerminationStrategy_RequiresPositiveCap(t *testing.T) {
	_, err := NewTerminationStrategy(TerminationConfig{MaximumIterations: 0}, nil)
	assert.Error(t, err)
}
