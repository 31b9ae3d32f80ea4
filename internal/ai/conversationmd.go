package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

const maxTranscriptContent = 5000

//go:embed transcript_template.tmpl
var transcriptTemplate string

// transcriptData is the data structure for markdown rendering
type transcriptData struct {
	Title      string
	CreatedAt  string
	Outcome    string
	Messages   []transcriptMessage
	TokenUsage Usage
}

type transcriptMessage struct {
	Sequence int64
	Heading  string
	Text     string
	IsCode   bool
	Items    []transcriptItem
}

type transcriptItem struct {
	Kind        string
	Description string
}

// RenderTranscript renders a conversation as markdown. The outcome describes how the conversation ended and may be
// empty
func RenderTranscript(title string, messages []Message, outcome string) (string, error) {
	data := transcriptData{
		Title:     title,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05 MST"),
		Outcome:   outcome,
	}
	for _, msg := range messages {
		data.Messages = append(data.Messages, convertTranscriptMessage(msg))
		data.TokenUsage = data.TokenUsage.Add(msg.Usage)
	}

	funcMap := template.FuncMap{
		"quote": func(text string) string {
			lines := strings.Split(text, "\n")
			for i, line := range lines {
				lines[i] = "> " + line
			}
			return strings.Join(lines, "\n")
		},
		"truncateContent": truncateContent,
	}

	tmpl, err := template.New("transcript").Funcs(funcMap).Parse(transcriptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse transcript template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute transcript template: %w", err)
	}
	return buf.String(), nil
}

func convertTranscriptMessage(msg Message) transcriptMessage {
	heading := "User"
	if msg.Role == RoleAgent {
		author := msg.AuthorName
		if author == "" {
			author = "*"
		}
		heading = "Agent - " + author
	} else if msg.AuthorName != "" {
		heading = "User - " + msg.AuthorName
	}

	converted := transcriptMessage{
		Sequence: msg.Sequence,
		Heading:  heading,
		Text:     strings.TrimSpace(msg.Content()),
		IsCode:   msg.IsCode(),
	}
	for _, item := range msg.Items {
		if _, ok := item.(TextContent); ok {
			continue
		}
		converted.Items = append(converted.Items, transcriptItem{Kind: item.Kind(), Description: DescribeItem(item)})
	}
	return converted
}

// truncateContent shortens content to at most maxTranscriptContent bytes without splitting a rune
func truncateContent(content string) string {
	if len(content) <= maxTranscriptContent {
		return content
	}
	cut := maxTranscriptContent
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "\n... (content truncated)"
}
