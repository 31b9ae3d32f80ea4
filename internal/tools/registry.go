// Package tools provides the tool (plugin function) system exposed to language models.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Tool defines the interface for all tools
type Tool interface {
	// Definition describes the tool to the model
	Definition() Definition

	// Run performs the tool call with JSON-encoded input and returns a string result or an error. The error will be a
	// ToolInputError if it is recoverable by fixing inputs
	Run(ctx context.Context, input json.RawMessage) (string, error)
}

// Definition names and describes a tool and the shape of its input
type Definition struct {
	Name        string
	Description string
	InputSchema Schema
}

// ToolInputError represents an error that could be recovered by correcting inputs to the tool. This error will be
// uploaded to the model, so it must not contain any sensitive information
type ToolInputError struct {
	cause error
}

func (tie ToolInputError) Error() string {
	return fmt.Sprintf("tool input error: %s", tie.cause)
}

func (tie ToolInputError) Unwrap() error {
	return tie.cause
}

func NewToolInputError(cause error) ToolInputError {
	return ToolInputError{cause: cause}
}

// Result is the outcome of a tool call as reported back to the model
type Result struct {
	Content string
	IsError bool
}

// Registry manages the tools available to a model
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry containing the given tools
func NewRegistry(tools ...Tool) (*Registry, error) {
	registry := &Registry{
		tools: make(map[string]Tool),
	}
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a tool. Tool names must be unique
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool has no name: %T", tool)
	}
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("duplicate tool name: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns a tool by name, or nil
func (r *Registry) Get(name string) Tool {
	if r == nil {
		return nil
	}
	return r.tools[name]
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

// Definitions returns the definitions of all tools, sorted by name
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch runs the named tool. Input errors and unknown tools produce an error result so that the model has the
// opportunity to correct itself; any other tool failure is returned as an error
func (r *Registry) Dispatch(ctx context.Context, name string, input json.RawMessage) (Result, error) {
	tool := r.Get(name)
	if tool == nil {
		logrus.WithField("tool", name).Warn("Model requested an unknown tool")
		return Result{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}

	output, err := tool.Run(ctx, input)
	var tie ToolInputError
	if errors.As(err, &tie) {
		logrus.WithError(err).WithField("tool", name).Warn("Recoverable tool error, reporting to the model to give it an opportunity to retry")
		return Result{Content: tie.Error(), IsError: true}, nil
	} else if err != nil {
		return Result{}, fmt.Errorf("error while running tool %s: %w", name, err)
	}
	return Result{Content: output}, nil
}

// ParseInput unmarshals tool input, reporting malformed input as a ToolInputError
func ParseInput(input json.RawMessage, target any) error {
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	err := json.Unmarshal(input, target)
	if err != nil {
		return NewToolInputError(err)
	}
	return nil
}

// JSONResult marshals a tool's return value
func JSONResult(value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(b), nil
}
