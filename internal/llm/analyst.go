package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/truthguard/internal/model"
)

// Analyst asks a provider for a fact-check narrative about one piece of content.
// It makes exactly one provider call per Explain and never retries.
type Analyst struct {
	provider Provider
	config   Config
}

// NewAnalyst creates an analyst from configuration
func NewAnalyst(config Config) (*Analyst, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Analyst{provider: provider, config: config}, nil
}

// NewAnalystWithProvider wraps an existing provider
func NewAnalystWithProvider(provider Provider, config Config) *Analyst {
	return &Analyst{provider: provider, config: config}
}

// ProviderName returns the name of the active provider
func (a *Analyst) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

// IsAvailable reports whether the provider answers
func (a *Analyst) IsAvailable(ctx context.Context) bool {
	if a.provider == nil {
		return false
	}
	return a.provider.IsAvailable(ctx)
}

// Explain sends the content to the provider and returns the narrative text,
// or model.FallbackExplanation when the provider produced nothing
func (a *Analyst) Explain(ctx context.Context, content string) (string, error) {
	if a.provider == nil {
		return "", fmt.Errorf("no LLM provider configured")
	}

	req := CompletionRequest{
		System:      BuildSystemPrompt(),
		User:        BuildUserPrompt(content),
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	}

	start := time.Now()
	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		slog.Error("LLM completion failed", "provider", a.provider.Name(), "duration", time.Since(start), "error", err)
		return "", err
	}

	if resp == nil {
		return model.FallbackExplanation, nil
	}

	slog.Debug("LLM completion done",
		"provider", a.provider.Name(),
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"duration", time.Since(start),
	)

	if strings.TrimSpace(resp.Text) == "" {
		return model.FallbackExplanation, nil
	}
	return resp.Text, nil
}
