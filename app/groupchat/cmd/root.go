package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cchalm/groupchat/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "groupchat",
	Short: "Language model agents that talk to tools and to each other",
	Long: `Groupchat runs small demonstrations of language model agents: a single agent that answers
questions using a menu plugin, and two agents that debate until one of them approves.`,
	PersistentPreRunE: loadRootConfig,
	SilenceUsage:      true,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	if err := loadConfigFromEnv(cmd); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	if cfg.NoColor {
		color.NoColor = true
	}
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar((*string)(&cfg.Provider), "provider", string(config.ProviderAnthropic), "Model provider: anthropic or openai (any OpenAI-compatible API)")
	flags.StringVar(&cfg.Model, "model", "", "Model name (defaults depend on the provider)")
	flags.StringVar(&cfg.BaseURL, "base-url", "", "Base URL of the model API")
	flags.Int64Var(&cfg.MaxOutputTokens, "max-tokens", config.DefaultMaxTokens, "Maximum output tokens per model response")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&cfg.TelemetryEnabled, "telemetry", false, "Export traces over OTLP/HTTP")
	flags.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", "", "OTLP/HTTP collector endpoint (host:port)")
	flags.BoolVar(&cfg.OTLPInsecure, "otlp-insecure", false, "Use plain HTTP for the OTLP exporter")
}
