package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cchalm/groupchat/internal/config"
)

var cfg = config.Config{}

// loadOptionalFromEnv sets dest from an environment variable, unless the flag with the given name was set explicitly
// on the command line
func loadOptionalFromEnv(cmd *cobra.Command, flag string, dest *string, key string) {
	_ = parseOptionalFromEnv(cmd, flag, dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](cmd *cobra.Command, flag string, dest *T, key string, parseFn func(string) (T, error)) error {
	if flag != "" && cmd.Flags().Changed(flag) {
		return nil // The flag takes precedence
	}
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}

// loadConfigFromEnv fills the configuration from environment variables that were not overridden by flags
func loadConfigFromEnv(cmd *cobra.Command) error {
	var provider string
	loadOptionalFromEnv(cmd, "provider", &provider, "LLM_PROVIDER")
	if provider != "" {
		cfg.Provider = config.Provider(provider)
	}
	loadOptionalFromEnv(cmd, "model", &cfg.Model, "LLM_MODEL")
	loadOptionalFromEnv(cmd, "base-url", &cfg.BaseURL, "LLM_BASE_URL")
	loadOptionalFromEnv(cmd, "log-level", &cfg.LogLevel, "LOG_LEVEL")
	loadOptionalFromEnv(cmd, "otlp-endpoint", &cfg.OTLPEndpoint, "OTLP_ENDPOINT")
	loadOptionalFromEnv(cmd, "", &cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	loadOptionalFromEnv(cmd, "", &cfg.OpenAIAPIKey, "OPENAI_API_KEY")

	parseInt := func(v string) (int64, error) { return strconv.ParseInt(v, 10, 64) }
	if err := parseOptionalFromEnv(cmd, "max-tokens", &cfg.MaxOutputTokens, "LLM_MAX_TOKENS", parseInt); err != nil {
		return err
	}
	if err := parseOptionalFromEnv(cmd, "telemetry", &cfg.TelemetryEnabled, "TELEMETRY_ENABLED", strconv.ParseBool); err != nil {
		return err
	}
	if err := parseOptionalFromEnv(cmd, "otlp-insecure", &cfg.OTLPInsecure, "OTLP_INSECURE", strconv.ParseBool); err != nil {
		return err
	}
	return nil
}
