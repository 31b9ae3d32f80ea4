//go:build e2e

package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/groupchat/internal/ai"
	"github.com/cchalm/groupchat/internal/tools"
)

// TestConfig holds configuration for end-to-end tests
type TestConfig struct {
	Model        anthropic.Model
	MaxTokens    int64
	Iterations   int
	Timeout      time.Duration
	AnthropicKey string
}

// LoadTestConfig loads test configuration from environment variables
func LoadTestConfig() TestConfig {
	config := TestConfig{
		Model:      anthropic.ModelClaudeSonnet4_0,
		MaxTokens:  1024,
		Iterations: 3,
		Timeout:    300 * time.Second,
	}

	if model := os.Getenv("E2E_MODEL"); model != "" {
		config.Model = anthropic.Model(model)
	}

	if tokens := os.Getenv("E2E_MAX_TOKENS"); tokens != "" {
		if val, err := strconv.ParseInt(tokens, 10, 64); err == nil {
			config.MaxTokens = val
		}
	}

	if iterations := os.Getenv("E2E_ITERATIONS"); iterations != "" {
		if val, err := strconv.Atoi(iterations); err == nil {
			config.Iterations = val
		}
	}

	if timeout := os.Getenv("E2E_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil {
			config.Timeout = time.Duration(val) * time.Second
		}
	}

	config.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")

	return config
}

// TestHarness provides utilities for end-to-end testing
type TestHarness struct {
	t               *testing.T
	config          TestConfig
	anthropicClient anthropic.Client
}

// NewTestHarness creates a new test harness
func NewTestHarness(t *testing.T) *TestHarness {
	config := LoadTestConfig()

	require.NotEmpty(t, config.AnthropicKey, "ANTHROPIC_API_KEY environment variable is required for e2e tests")

	anthropicClient := anthropic.NewClient(
		option.WithAPIKey(config.AnthropicKey),
	)

	return &TestHarness{
		t:               t,
		config:          config,
		anthropicClient: anthropicClient,
	}
}

// Config returns the test configuration
func (h *TestHarness) Config() TestConfig {
	return h.config
}

// NewClient creates a language model client with the configured settings. The registry may be nil
func (h *TestHarness) NewClient(registry *tools.Registry) ai.LanguageModelClient {
	return ai.NewAnthropicClient(
		ai.NewStreamingMessageSender(h.anthropicClient),
		h.config.Model,
		h.config.MaxTokens,
		registry,
	)
}

// RunIterations runs a test function multiple times and reports results
func (h *TestHarness) RunIterations(testName string, testFunc func(iteration int) error) {
	h.t.Helper()

	successCount := 0
	var lastError error

	for i := 0; i < h.config.Iterations; i++ {
		h.t.Logf("Running iteration %d/%d of %s", i+1, h.config.Iterations, testName)

		err := testFunc(i)
		if err != nil {
			h.t.Logf("Iteration %d failed: %v", i+1, err)
			lastError = err
		} else {
			successCount++
			h.t.Logf("Iteration %d succeeded", i+1)
		}
	}

	h.t.Logf("Test %s: %d/%d iterations succeeded", testName, successCount, h.config.Iterations)

	// Require at least 2/3 success rate for tests to pass
	minSuccessCount := (h.config.Iterations*2 + 2) / 3
	if successCount < minSuccessCount {
		require.NoErrorf(h.t, lastError, "Test %s failed with %d/%d successes (minimum %d required)",
			testName, successCount, h.config.Iterations, minSuccessCount)
	}
}

// WithTimeout runs a function with the configured timeout
func (h *TestHarness) WithTimeout(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return fn(ctx)
}
