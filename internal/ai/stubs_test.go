package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cchalm/groupchat/internal/tools"
)

type echoInput struct {
	Text string `json:"text" jsonschema:"description=The text to echo."`
}

// echoTool returns its input text, or fails with an input error when the text is empty
type echoTool struct {
	calls int
}

func (et *echoTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "echo",
		Description: "Echoes the given text.",
		InputSchema: tools.MustSchemaFor[echoInput](),
	}
}

func (et *echoTool) Run(_ context.Context, input json.RawMessage) (string, error) {
	et.calls++
	var in echoInput
	if err := tools.ParseInput(input, &in); err != nil {
		return "", err
	}
	if in.Text == "" {
		return "", tools.NewToolInputError(fmt.Errorf("text is required"))
	}
	return in.Text, nil
}
