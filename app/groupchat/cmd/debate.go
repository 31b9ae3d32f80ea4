package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/console"
	"github.com/cchalm/groupchat/internal/groupchat"
)

var debateOptions struct {
	Concept        string
	RosterFile     string
	MaxIterations  int
	HistoryWindow  int
	TranscriptFile string
}

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run a group chat between a copywriter and an art director",
	Long: `Runs a turn-taking chat between agents. The speaker of each turn and the end of the chat are
decided by prompts evaluated against the most recent messages. The chat ends when the art director
approves the copy, or after a maximum number of turns.`,
	RunE: runDebate,
}

func init() {
	flags := debateCmd.Flags()
	flags.StringVar(&debateOptions.Concept, "concept", "maps made out of egg cartons. make 4 of them", "Concept for the copy")
	flags.StringVar(&debateOptions.RosterFile, "agents", "", "YAML file describing the agents and strategies (defaults to the built-in roster)")
	flags.IntVar(&debateOptions.MaxIterations, "max-iterations", 0, "Override the roster's maximum number of turns")
	flags.IntVar(&debateOptions.HistoryWindow, "history-window", 0, "Override the number of recent messages shown to the strategies")
	flags.StringVar(&debateOptions.TranscriptFile, "transcript", "", "Write a markdown transcript of the chat to this file")

	rootCmd.AddCommand(debateCmd)
}

func runDebate(cmd *cobra.Command, _ []string) error {
	ctx := setupContext()

	roster, err := loadDebateRoster(cmd)
	if err != nil {
		return err
	}

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer shutdownTelemetry(telemetryProvider)

	tracer := telemetryProvider.Tracer()
	client := createLanguageModelClient(cfg, nil, tracer)
	chat, err := roster.Build(client, tracer)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	renderer := console.NewRenderer(cmd.OutOrStdout(), cfg.NoColor)
	if err := chat.AddChatMessage(ai.NewUserMessage("concept: " + debateOptions.Concept)); err != nil {
		return err
	}
	for _, msg := range chat.History() {
		if err := renderer.WriteMessage(msg); err != nil {
			return err
		}
	}

	for msg, err := range chat.Invoke(ctx) {
		if err != nil {
			// Recorded in the outcome
			break
		}
		if err := renderer.WriteMessage(msg); err != nil {
			return err
		}
	}

	outcome := chat.Outcome()
	if err := renderer.WriteOutcome(outcome); err != nil {
		return err
	}

	if debateOptions.TranscriptFile != "" {
		if err := writeTranscript(debateOptions.TranscriptFile, chat.History(), outcome); err != nil {
			return err
		}
	}

	switch outcome.Reason {
	case groupchat.ReasonApproved, groupchat.ReasonMaxIterationsReached:
		return nil
	default:
		return fmt.Errorf("chat %s: %w", outcome.Reason, outcome.Err)
	}
}

func loadDebateRoster(cmd *cobra.Command) (groupchat.Roster, error) {
	var roster groupchat.Roster
	var err error
	if debateOptions.RosterFile != "" {
		roster, err = groupchat.LoadRoster(debateOptions.RosterFile)
	} else {
		roster, err = groupchat.DefaultRoster()
	}
	if err != nil {
		return groupchat.Roster{}, fmt.Errorf("failed to load agents: %w", err)
	}

	if cmd.Flags().Changed("max-iterations") {
		roster.Termination.MaximumIterations = debateOptions.MaxIterations
	}
	if cmd.Flags().Changed("history-window") {
		roster.HistoryWindow = debateOptions.HistoryWindow
	}
	if err := roster.Validate(); err != nil {
		return groupchat.Roster{}, fmt.Errorf("invalid agents configuration: %w", err)
	}
	return roster, nil
}

func writeTranscript(path string, history []ai.Message, outcome groupchat.Outcome) error {
	markdown, err := ai.RenderTranscript("Group chat", history, outcome.Reason.String())
	if err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	logrus.WithField("path", path).Info("Transcript written")
	return nil
}
