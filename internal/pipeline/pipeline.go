package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/truthguard/internal/llm"
	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/score"
)

// ErrEmptyContent is returned when there is nothing to analyze
var ErrEmptyContent = errors.New("content is required")

// Explainer produces the fact-check narrative for one piece of content
type Explainer interface {
	Explain(ctx context.Context, content string) (string, error)
}

// Pipeline runs truncate, explain, score and warnings for each request.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	explainer Explainer
	scorer    *score.Scorer
	fetcher   *Fetcher
}

// Analysis is a result together with the scoring trace
type Analysis struct {
	Result    *model.AnalysisResult
	Breakdown score.Breakdown

	// Content is what was actually sent to the LLM
	Content string
}

// NewPipeline creates a pipeline backed by the configured LLM provider
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	analyst, err := llm.NewAnalyst(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	p := NewPipelineWithExplainer(analyst)
	p.fetcher = NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxBytes, cfg.Fetch.RespectRobots)
	return p, nil
}

// NewPipelineWithExplainer wraps an existing explainer, mainly for tests
func NewPipelineWithExplainer(explainer Explainer) *Pipeline {
	return &Pipeline{
		explainer: explainer,
		scorer:    score.NewScorer(),
	}
}

// Explainer returns the underlying explainer
func (p *Pipeline) Explainer() Explainer {
	return p.explainer
}

// Analyze scores one piece of content. Errors from the LLM are returned
// as-is; there are no partial results.
func (p *Pipeline) Analyze(ctx context.Context, content string) (*model.AnalysisResult, error) {
	a, err := p.AnalyzeDetailed(ctx, content)
	if err != nil {
		return nil, err
	}
	return a.Result, nil
}

// AnalyzeDetailed is Analyze plus the scoring breakdown
func (p *Pipeline) AnalyzeDetailed(ctx context.Context, content string) (*Analysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	// 1. Truncate
	truncated := model.TruncateContent(content)

	// 2. One LLM call
	explanation, err := p.explainer.Explain(ctx, truncated)
	if err != nil {
		return nil, err
	}

	// 3. Score and warnings from the same narrative
	breakdown := p.scorer.Breakdown(explanation)
	result := &model.AnalysisResult{
		Credibility: breakdown.Score,
		Explanation: explanation,
		Warnings:    score.ExtractWarnings(explanation),
	}

	return &Analysis{
		Result:    result,
		Breakdown: breakdown,
		Content:   truncated,
	}, nil
}

// AnalyzeURL fetches an article and analyzes its visible text
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*Analysis, *FetchResult, error) {
	if p.fetcher == nil {
		return nil, nil, fmt.Errorf("fetcher not configured")
	}

	page, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	a, err := p.AnalyzeDetailed(ctx, page.Text)
	if err != nil {
		return nil, page, err
	}
	return a, page, nil
}
