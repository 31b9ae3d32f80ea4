package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/console"
	"github.com/cchalm/groupchat/internal/groupchat"
	"github.com/cchalm/groupchat/internal/tools"
	"github.com/cchalm/groupchat/internal/tools/menu"
)

const (
	hostAgentName         = "HostAgent"
	hostAgentInstructions = "Answer questions about the menu."
)

var menuQuestion string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Ask a single agent a question about the menu",
	Long: `Asks a host agent a question. The agent can look up the menu, the specials and item prices
through tools.`,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&menuQuestion, "question", "What is the special soup and how much does it cost?", "Question to ask the host")

	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	ctx := setupContext()

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer shutdownTelemetry(telemetryProvider)

	toolRegistry, err := tools.NewRegistry(menu.New().Tools()...)
	if err != nil {
		return fmt.Errorf("failed to register menu tools: %w", err)
	}
	client := createLanguageModelClient(cfg, toolRegistry, telemetryProvider.Tracer())
	host := groupchat.NewChatAgent(hostAgentName, hostAgentInstructions, client)
	renderer := console.NewRenderer(cmd.OutOrStdout(), cfg.NoColor)

	chatLog := groupchat.NewConversationLog()
	question := ai.NewUserMessage(menuQuestion)
	question.Sequence = chatLog.NextSequence()
	if err := chatLog.Append(question); err != nil {
		return err
	}
	if err := renderer.WriteMessage(question); err != nil {
		return err
	}

	response, err := host.Invoke(ctx, chatLog.Messages())
	if err != nil {
		return err
	}
	response.Sequence = chatLog.NextSequence()
	if err := chatLog.Append(response); err != nil {
		return err
	}
	return renderer.WriteMessage(response)
}
