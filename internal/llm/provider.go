package llm

import (
	"context"
	"os"
)

// Provider defines the interface for chat completion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system+user prompt pair and returns the first choice
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a single chat completion
type CompletionRequest struct {
	// System is the instruction message
	System string

	// User is the user message carrying the content under analysis
	User string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0
	Temperature float32
}

// CompletionResponse contains the provider output
type CompletionResponse struct {
	// Text is the first choice's content; empty when the provider returned no choice
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey takes precedence over APIKeyEnv
	APIKey string

	// APIKeyEnv names the environment variable holding the key.
	// It is read on every request, never at startup.
	APIKeyEnv string

	// BaseURL for custom endpoints (OpenAI-compatible gateways, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Temperature for sampling; near zero keeps the labeled format stable
	Temperature float32

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Timeout:     30,
		Temperature: 0.2,
		MaxTokens:   400,
	}
}

// ResolveAPIKey returns the configured key or the current value of APIKeyEnv.
// An empty result is passed through and surfaces as an upstream auth error.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 400
}

func (c Config) temperature(override float32) float32 {
	if override > 0 {
		return override
	}
	return c.Temperature
}
