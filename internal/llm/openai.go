package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible endpoints
type OpenAIProvider struct {
	config     Config
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
// The API key is not required here; it is resolved per request.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return &OpenAIProvider{
		config:     config,
		httpClient: newHTTPClient(config, 0),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// client builds a go-openai client with the key as it is right now
func (p *OpenAIProvider) client() *openai.Client {
	clientConfig := openai.DefaultConfig(p.config.ResolveAPIKey())
	if p.config.BaseURL != "" {
		clientConfig.BaseURL = p.config.BaseURL
	}
	clientConfig.HTTPClient = p.httpClient
	return openai.NewClientWithConfig(clientConfig)
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the cheapest authenticated call
	_, err := p.client().ListModels(ctx)
	if err != nil {
		slog.Warn("OpenAI API check failed", "base_url", p.config.BaseURL, "error", err)
		return false
	}
	return true
}

// Complete runs one chat completion and returns the first choice
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// go-openai omits a zero temperature and the endpoint then falls back to its default
	temperature := p.config.temperature(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		MaxTokens:   p.config.maxTokens(req.MaxTokens),
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeText,
		},
	}

	resp, err := p.client().CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	out := &CompletionResponse{
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}
	if out.Model == "" {
		out.Model = model
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}

	return out, nil
}
