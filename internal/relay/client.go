package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/truthguard/internal/model"
)

// maxErrorBody caps how much of a failed response is read for its error message
const maxErrorBody = 64 << 10

// Client talks to the truthguard backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. A zero timeout means no client-side limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze posts text to /api/analyze and decodes the result
func (c *Client) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	body, err := json.Marshal(model.AnalysisRequest{Content: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var result model.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result.NormalizeWarnings()
	return &result, nil
}

// Ping checks that the backend is reachable via /api/health
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// statusError prefers the server's {"error": ...} message over the bare status
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr model.ErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("Server error: %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("Server error: %d", resp.StatusCode)
}
