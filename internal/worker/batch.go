package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/truthguard/internal/model"
)

// Analyzer scores one piece of content
type Analyzer interface {
	Analyze(ctx context.Context, content string) (*model.AnalysisResult, error)
}

// batchLimitKey is the limiter key shared by every job of a batch,
// since they all hit the same LLM endpoint
const batchLimitKey = "llm"

// AnalyzeJob represents one text to analyze
type AnalyzeJob struct {
	Index    int
	Text     string
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute executes the analyze job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	start := time.Now()

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, batchLimitKey); err != nil {
			return &AnalyzeResult{Index: j.Index, Text: j.Text, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	result, err := j.Analyzer.Analyze(ctx, j.Text)
	return &AnalyzeResult{
		Index:    j.Index,
		Text:     j.Text,
		Result:   result,
		Error:    err,
		Duration: time.Since(start),
	}
}

// AnalyzeResult represents the result of an analyze job
type AnalyzeResult struct {
	Index    int
	Text     string
	Result   *model.AnalysisResult
	Error    error
	Duration time.Duration
}

// GetError returns the error from the analyze result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many texts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor.
// Outbound LLM calls are throttled when requestsPerSecond > 0.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ProcessTexts analyzes every text and returns results in input order
func (b *BatchProcessor) ProcessTexts(ctx context.Context, texts []string) []*AnalyzeResult {
	if len(texts) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		defer pool.Close()
		for i, text := range texts {
			job := &AnalyzeJob{
				Index:    i,
				Text:     text,
				Analyzer: b.analyzer,
				Limiter:  b.limiter,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	results := make([]*AnalyzeResult, 0, len(texts))
	for r := range pool.Results() {
		res := r.(*AnalyzeResult)
		if res.Error != nil {
			slog.Debug("batch item failed", "index", res.Index, "error", res.Error)
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads texts from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	texts, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}

	return b.ProcessTexts(ctx, texts), nil
}

// ReadLinesFromFile reads texts from a file (one per line)
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
