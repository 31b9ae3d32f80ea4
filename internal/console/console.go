// Package console renders chat messages for a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/groupchat"
)

// Renderer writes chat messages to a terminal
type Renderer struct {
	out io.Writer

	role   *color.Color
	author *color.Color
	tag    *color.Color
	status *color.Color
}

// NewRenderer creates a renderer. Colors are disabled when noColor is set, in addition to fatih/color's own
// detection of non-terminal outputs and NO_COLOR
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		out:    out,
		role:   color.New(color.Bold),
		author: color.New(color.FgCyan),
		tag:    color.New(color.FgYellow),
		status: color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.role, r.author, r.tag, r.status} {
			c.DisableColor()
		}
	}
	return r
}

// WriteMessage writes a message header and content, followed by one line per non-text content item:
//
//	# <role>[ - <author>]: <content>
//	  [<kind>] <description>
func (r *Renderer) WriteMessage(msg ai.Message) error {
	var sb strings.Builder

	sb.WriteString("\n# ")
	sb.WriteString(r.role.Sprint(msg.Role.String()))
	if msg.Role != ai.RoleUser {
		author := msg.AuthorName
		if author == "" {
			author = "*"
		}
		sb.WriteString(" - ")
		sb.WriteString(r.author.Sprint(author))
	}
	sb.WriteString(":")
	if msg.IsCode() {
		sb.WriteString("\n  [CODE]\n")
	} else {
		sb.WriteString(" ")
	}
	if content := msg.Content(); strings.TrimSpace(content) != "" {
		sb.WriteString(content)
	}
	sb.WriteString("\n")

	for _, item := range msg.Items {
		line, ok := r.itemLine(item)
		if !ok {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	_, err := io.WriteString(r.out, sb.String())
	return err
}

// itemLine renders a non-text content item. Text items are part of the message content and are skipped
func (r *Renderer) itemLine(item ai.ContentItem) (string, bool) {
	switch item.(type) {
	case ai.TextContent:
		return "", false
	case ai.AnnotationContent, ai.FileReferenceContent, ai.ImageContent, ai.FunctionCallContent, ai.FunctionResultContent:
		return fmt.Sprintf("  %s %s", r.tag.Sprintf("[%s]", item.Kind()), ai.DescribeItem(item)), true
	default:
		panic(fmt.Sprintf("unhandled content item %T", item))
	}
}

// WriteOutcome writes the final status line of a chat
func (r *Renderer) WriteOutcome(outcome groupchat.Outcome) error {
	complete := outcome.Phase == groupchat.PhaseCompleted && outcome.Reason == groupchat.ReasonApproved
	line := fmt.Sprintf("\n[IS COMPLETED: %t] %s after %d turns", complete, outcome.Reason, outcome.Turns)
	if outcome.Err != nil {
		line += fmt.Sprintf(": %v", outcome.Err)
	}
	_, err := fmt.Fprintln(r.out, r.status.Sprint(line))
	return err
}
