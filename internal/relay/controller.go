package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/truthguard/internal/model"
)

// ConnectionFailedWarning is the single warning of the fallback result
const ConnectionFailedWarning = "Connection failed - Please try again"

// ControllerConfig tunes the page controller
type ControllerConfig struct {
	ServerURL    string        // shown in the fallback explanation
	MaxRetries   int           // retries after the first send, on messaging failures only
	RetryDelay   time.Duration // fixed delay between attempts
	MinSelection int           // a selection must be longer than this to trigger analysis
}

// ControllerConfigFromModel converts model.RelayConfig
func ControllerConfigFromModel(cfg model.RelayConfig) ControllerConfig {
	return ControllerConfig{
		ServerURL:    cfg.ServerURL,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		MinSelection: cfg.MinSelection,
	}
}

// Controller owns one page's selection handling and panel state
type Controller struct {
	cfg       ControllerConfig
	messenger Messenger
	sleep     func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	panel    Panel
	viewport Viewport
}

// NewController creates a page controller
func NewController(cfg ControllerConfig, messenger Messenger) *Controller {
	return &Controller{
		cfg:       cfg,
		messenger: messenger,
		sleep:     sleepContext,
	}
}

// SetViewport records the current viewport and repositions a visible panel
func (c *Controller) SetViewport(vp Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = vp
	c.panel.Reposition(vp)
}

// Panel returns a snapshot of the panel state
func (c *Controller) Panel() Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// Close hides the panel
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.Hide()
}

// OnSelection analyzes a mouse selection. Short selections are ignored and
// reported with ok=false.
func (c *Controller) OnSelection(ctx context.Context, text string, rect Rect) (result *model.AnalysisResult, ok bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= c.cfg.MinSelection {
		return nil, false
	}
	return c.run(ctx, text, rect), true
}

// HandleCommand runs a context-menu command. The command's text wins over
// the current selection; empty text is ignored.
func (c *Controller) HandleCommand(ctx context.Context, cmd Command, selection string, rect Rect) (result *model.AnalysisResult, ok bool) {
	if cmd.Action != ActionAnalyzeSelection {
		return nil, false
	}

	text := cmd.Text
	if text == "" {
		text = strings.TrimSpace(selection)
	}
	if text == "" {
		return nil, false
	}
	return c.run(ctx, text, rect), true
}

func (c *Controller) run(ctx context.Context, text string, rect Rect) *model.AnalysisResult {
	c.mu.Lock()
	c.panel.Show(rect, c.viewport)
	c.mu.Unlock()

	result := c.Analyze(ctx, text)

	c.mu.Lock()
	c.panel.Update(result)
	c.mu.Unlock()
	return result
}

// Analyze sends text to the background and always returns a displayable
// result. Messaging failures are retried; a failed analysis is not.
func (c *Controller) Analyze(ctx context.Context, text string) *model.AnalysisResult {
	msg := Message{Type: MessageAnalyzeText, Text: model.TruncateContent(text)}

	resp, err := c.send(ctx, msg)
	if err == nil && !resp.Success {
		err = errors.New(resp.Error)
		if resp.Error == "" {
			err = errors.New("Failed to analyze")
		}
	}
	if err != nil {
		slog.Warn("Analysis relay failed", "error", err)
		return c.fallback(err)
	}

	result := &model.AnalysisResult{}
	if resp.Data != nil {
		*result = *resp.Data
	}
	if result.Explanation == "" {
		result.Explanation = "No explanation provided"
	}
	result.NormalizeWarnings()
	return result
}

func (c *Controller) send(ctx context.Context, msg Message) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying message", "attempt", attempt, "max_retries", c.cfg.MaxRetries)
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return Response{}, err
			}
		}

		resp, err := c.messenger.Send(ctx, msg)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		lastErr = err
	}
	slog.Warn("Message delivery failed", "attempts", c.cfg.MaxRetries+1, "error", lastErr)
	return Response{}, ErrNoReceiver
}

func (c *Controller) fallback(err error) *model.AnalysisResult {
	return &model.AnalysisResult{
		Credibility: 0,
		Explanation: fmt.Sprintf("Error: %s. Please check if the server is running at %s", err, c.cfg.ServerURL),
		Warnings:    []string{ConnectionFailedWarning},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
