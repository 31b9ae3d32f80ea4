// Package config provides configuration management for the groupchat demos.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Provider names a language model backend
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai" // Any OpenAI-compatible API, e.g. a local Ollama server
)

const (
	DefaultAnthropicModel = "claude-sonnet-4-0"
	DefaultOpenAIModel    = "llama3.2:latest"
	DefaultOpenAIBaseURL  = "http://localhost:11434/v1"
	DefaultMaxTokens      = 2048
)

// Config holds the configuration shared by all commands
type Config struct {
	Provider        Provider
	Model           string
	BaseURL         string
	MaxOutputTokens int64
	AnthropicAPIKey string
	OpenAIAPIKey    string

	LogLevel string
	NoColor  bool

	// Telemetry config
	TelemetryEnabled bool
	OTLPEndpoint     string
	OTLPInsecure     bool
}

// ApplyDefaults fills in provider-dependent defaults for unset fields
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	c.Provider = Provider(strings.ToLower(string(c.Provider)))
	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = DefaultAnthropicModel
		case ProviderOpenAI:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.BaseURL == "" && c.Provider == ProviderOpenAI {
		c.BaseURL = DefaultOpenAIBaseURL
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxTokens
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("missing required environment variable: ANTHROPIC_API_KEY")
		}
	case ProviderOpenAI:
		// Local OpenAI-compatible servers don't require a key
	default:
		return fmt.Errorf("unknown provider %q, expected %q or %q", c.Provider, ProviderAnthropic, ProviderOpenAI)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.TelemetryEnabled && c.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry is enabled but no OTLP endpoint is configured")
	}
	return nil
}
