package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	oaiopt "github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/config"
	"github.com/cchalm/groupchat/internal/telemetry"
	"github.com/cchalm/groupchat/internal/tools"
	"github.com/cchalm/groupchat/internal/transport"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logrus.Info("Interrupt signal detected, stopping after the current turn...")
		cancel()
		<-interrupt
		logrus.Fatal("Forcing shutdown")
	}()

	return ctx
}

// createLanguageModelClient creates a traced client for the configured provider. toolRegistry may be nil
func createLanguageModelClient(cfg config.Config, toolRegistry *tools.Registry, tracer trace.Tracer) ai.LanguageModelClient {
	httpClient := &http.Client{
		Transport: transport.WithRetryAfter(nil),
	}

	var client ai.LanguageModelClient
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []oaiopt.RequestOption{
			oaiopt.WithHTTPClient(httpClient),
			oaiopt.WithBaseURL(cfg.BaseURL),
			oaiopt.WithMaxRetries(5),
		}
		if cfg.OpenAIAPIKey != "" {
			opts = append(opts, oaiopt.WithAPIKey(cfg.OpenAIAPIKey))
		} else {
			// Local servers ignore the key, but the header must be present
			opts = append(opts, oaiopt.WithAPIKey("unused"))
		}
		sender := ai.NewChatCompletionSender(openai.NewClient(opts...))
		client = ai.NewOpenAIClient(sender, cfg.Model, cfg.MaxOutputTokens, toolRegistry)
	default:
		opts := []option.RequestOption{
			option.WithHTTPClient(httpClient),
			option.WithAPIKey(cfg.AnthropicAPIKey),
			option.WithMaxRetries(5),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		sender := ai.NewStreamingMessageSender(anthropic.NewClient(opts...))
		client = ai.NewAnthropicClient(sender, anthropic.Model(cfg.Model), cfg.MaxOutputTokens, toolRegistry)
	}

	return telemetry.WrapClient(client, tracer, string(cfg.Provider), cfg.Model)
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.Config{
		Enabled:        cfg.TelemetryEnabled,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.OTLPInsecure,
		ServiceVersion: versionInfo.Version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}

func shutdownTelemetry(provider *telemetry.Provider) {
	// The chat context may already be cancelled; give the exporter its own
	if err := provider.Shutdown(context.Background()); err != nil {
		logrus.WithError(err).Warn("Failed to flush telemetry")
	}
}
