package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/truthguard/internal/cache"
	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/pipeline"
)

const (
	errContentRequired = "Content is required"
	errContentType     = "Content must be a string"
)

// Analyzer runs one analysis; satisfied by *pipeline.Pipeline
type Analyzer interface {
	Analyze(ctx context.Context, content string) (*model.AnalysisResult, error)
}

// Prober reports whether the LLM backend answers; satisfied by *llm.Analyst
type Prober interface {
	ProviderName() string
	IsAvailable(ctx context.Context) bool
}

// analyzeRequest keeps content untyped so a non-string can be told apart from a missing one
type analyzeRequest struct {
	Content any `json:"content"`
}

// HandleAnalyze serves POST /api/analyze
func HandleAnalyze(analyzer Analyzer, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("Failed to parse the analyze request", "error", err, "request_id", c.GetString(requestIDKey))
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: errContentRequired})
			return
		}

		var content string
		switch v := req.Content.(type) {
		case nil:
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: errContentRequired})
			return
		case string:
			content = v
		default:
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: errContentType})
			return
		}

		if strings.TrimSpace(content) == "" {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: errContentRequired})
			return
		}

		start := time.Now()
		result, err := analyzer.Analyze(c.Request.Context(), content)
		if err != nil {
			if errors.Is(err, pipeline.ErrEmptyContent) {
				c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: errContentRequired})
				return
			}
			if metrics != nil {
				metrics.AnalyzeDurationSeconds.WithLabelValues("error").Observe(time.Since(start).Seconds())
			}
			slog.Error("Analysis failed", "error", err, "request_id", c.GetString(requestIDKey))
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
			return
		}

		if metrics != nil {
			metrics.AnalyzeDurationSeconds.WithLabelValues("success").Observe(time.Since(start).Seconds())
			metrics.CredibilityScore.Observe(float64(result.Credibility))
		}

		result.NormalizeWarnings()
		c.JSON(http.StatusOK, result)
	}
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status       string `json:"status"`
	Provider     string `json:"provider,omitempty"`
	LLMAvailable *bool  `json:"llm_available,omitempty"`
	Cached       bool   `json:"cached"`
}

// HandleHealth serves GET /api/health. The upstream probe result is memoized
// for the configured TTL so frequent extension pings do not hit the LLM.
// A TTL <= 0 probes on every request.
func HandleHealth(prober Prober, memo cache.Cache, cfg model.HealthConfig, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "ok"}
		if prober == nil || !cfg.ProbeLLM {
			c.JSON(http.StatusOK, resp)
			return
		}

		resp.Provider = prober.ProviderName()
		key := cache.Key("health", resp.Provider)

		probe := func() ([]byte, error) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ProbeTimeout)
			defer cancel()

			up := prober.IsAvailable(ctx)
			result := "down"
			if up {
				result = "up"
			}
			if metrics != nil {
				metrics.HealthProbesTotal.WithLabelValues(result).Inc()
			}
			return []byte(result), nil
		}

		var (
			val []byte
			hit bool
			err error
		)
		if cfg.CacheTTL > 0 {
			// go-cache treats a zero TTL as no expiry, so only positive TTLs are memoized
			val, hit, err = cache.Remember(memo, key, cfg.CacheTTL, probe)
		} else {
			val, err = probe()
		}
		if err != nil {
			slog.Warn("Health memo failed", "error", err)
		}

		available := string(val) == "up"
		resp.LLMAvailable = &available
		resp.Cached = hit
		c.JSON(http.StatusOK, resp)
	}
}
