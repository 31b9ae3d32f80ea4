//go:build e2e

package host

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/groupchat"
	"github.com/cchalm/groupchat/internal/tools"
	"github.com/cchalm/groupchat/internal/tools/menu"
	"github.com/cchalm/groupchat/test/e2e/testutil"
)

// TestMenuHostUsesTools tests that the host answers menu questions by calling the menu tools
func TestMenuHostUsesTools(t *testing.T) {
	harness := testutil.NewTestHarness(t)

	registry, err := tools.NewRegistry(menu.New().Tools()...)
	require.NoError(t, err)

	harness.RunIterations("menu_tools", func(iteration int) error {
		return harness.WithTimeout(func(ctx context.Context) error {
			host := groupchat.NewChatAgent("HostAgent", "Answer questions about the menu.", harness.NewClient(registry))

			reply, err := host.Invoke(ctx, []ai.Message{
				ai.NewUserMessage("What is the special soup and how much does it cost?"),
			})
			if err != nil {
				return fmt.Errorf("failed to invoke host: %w", err)
			}

			return analyzeMenuReply(reply)
		})
	})
}

func analyzeMenuReply(reply ai.Message) error {
	var calledTools []string
	for _, item := range reply.Items {
		if call, ok := item.(ai.FunctionCallContent); ok {
			calledTools = append(calledTools, call.Name)
		}
	}
	if len(calledTools) == 0 {
		return fmt.Errorf("expected the host to call menu tools, got none")
	}

	content := reply.Content()
	if !strings.Contains(content, "Clam Chowder") {
		return fmt.Errorf("expected the answer to name the special soup, got: %s", content)
	}
	if !strings.Contains(content, "4.95") {
		return fmt.Errorf("expected the answer to state the price, got: %s", content)
	}
	return nil
}
