package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAnalyzer struct {
	result  *model.AnalysisResult
	err     error
	calls   atomic.Int32
	content string
}

func (m *mockAnalyzer) Analyze(_ context.Context, content string) (*model.AnalysisResult, error) {
	m.calls.Add(1)
	m.content = content
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockProber struct {
	up    bool
	calls atomic.Int32
}

func (m *mockProber) ProviderName() string { return "mock" }

func (m *mockProber) IsAvailable(context.Context) bool {
	m.calls.Add(1)
	return m.up
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.RateLimiting.RequestsPerSecond = 0
	return cfg
}

func performRequest(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAnalyze_Success(t *testing.T) {
	analyzer := &mockAnalyzer{result: &model.AnalysisResult{
		Credibility: 72,
		Explanation: "VERDICT: LIKELY TRUE",
	}}
	srv := New(testConfig(), analyzer, nil)

	w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"The Earth orbits the Sun."}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 72, result.Credibility)
	assert.Equal(t, "VERDICT: LIKELY TRUE", result.Explanation)
	assert.NotNil(t, result.Warnings)
	assert.Contains(t, w.Body.String(), `"warnings":[]`)
	assert.Equal(t, "The Earth orbits the Sun.", analyzer.content)

	assert.Equal(t, 1, testutil.CollectAndCount(srv.Metrics().CredibilityScore))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics().RequestsTotal.WithLabelValues("/api/analyze", "200")))
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing content", `{}`, "Content is required"},
		{"null content", `{"content":null}`, "Content is required"},
		{"empty content", `{"content":""}`, "Content is required"},
		{"whitespace content", `{"content":"  \n\t "}`, "Content is required"},
		{"numeric content", `{"content":42}`, "Content must be a string"},
		{"object content", `{"content":{"text":"x"}}`, "Content must be a string"},
		{"malformed json", `{"content":`, "Content is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{result: &model.AnalysisResult{}}
			srv := New(testConfig(), analyzer, nil)

			w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Equal(t, int32(0), analyzer.calls.Load(), "analyzer must not be called")
		})
	}
}

func TestAnalyze_EmptyContentFromPipeline(t *testing.T) {
	analyzer := &mockAnalyzer{err: pipeline.ErrEmptyContent}
	srv := New(testConfig(), analyzer, nil)

	w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_UpstreamFailure(t *testing.T) {
	analyzer := &mockAnalyzer{err: errors.New("openai API error: connection refused")}
	srv := New(testConfig(), analyzer, nil)

	w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"some claim"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "openai API error: connection refused", resp.Error)
	assert.Equal(t, 1, testutil.CollectAndCount(srv.Metrics().AnalyzeDurationSeconds))
}

func TestAnalyze_EndToEndWithPipeline(t *testing.T) {
	explainer := explainerFunc(func(context.Context, string) (string, error) {
		return "VERDICT: LIKELY FALSE\nPOTENTIAL ISSUES:\n- No sources cited", nil
	})
	p := pipeline.NewPipelineWithExplainer(explainer)
	srv := New(testConfig(), p, nil)

	w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"Miracle cure found"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 38, result.Credibility)
	assert.Equal(t, []string{"No sources cited"}, result.Warnings)
}

type explainerFunc func(ctx context.Context, content string) (string, error)

func (f explainerFunc) Explain(ctx context.Context, content string) (string, error) {
	return f(ctx, content)
}

func TestCORS_Preflight(t *testing.T) {
	srv := New(testConfig(), &mockAnalyzer{}, nil)

	w := performRequest(srv.Handler(), http.MethodOptions, "/api/analyze", "", map[string]string{
		"Origin":                        "chrome-extension://abcdef",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_HeadersOnResponse(t *testing.T) {
	srv := New(testConfig(), &mockAnalyzer{result: &model.AnalysisResult{Credibility: 50}}, nil)

	w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"x y z"}`, map[string]string{
		"Origin": "https://news.example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth_CachesProbe(t *testing.T) {
	prober := &mockProber{up: true}
	srv := New(testConfig(), &mockAnalyzer{}, prober)

	for i := 0; i < 3; i++ {
		w := performRequest(srv.Handler(), http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "mock", resp.Provider)
		require.NotNil(t, resp.LLMAvailable)
		assert.True(t, *resp.LLMAvailable)
		assert.Equal(t, i > 0, resp.Cached)
	}

	assert.Equal(t, int32(1), prober.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics().HealthProbesTotal.WithLabelValues("up")))
}

func TestHealth_ZeroTTLSkipsMemo(t *testing.T) {
	cfg := testConfig()
	cfg.Health.CacheTTL = 0
	prober := &mockProber{up: true}
	srv := New(cfg, &mockAnalyzer{}, prober)

	for i := 0; i < 3; i++ {
		w := performRequest(srv.Handler(), http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Cached)
	}

	assert.Equal(t, int32(3), prober.calls.Load())
}

func TestHealth_ProviderDown(t *testing.T) {
	srv := New(testConfig(), &mockAnalyzer{}, &mockProber{up: false})

	w := performRequest(srv.Handler(), http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.LLMAvailable)
	assert.False(t, *resp.LLMAvailable)
}

func TestHealth_ProbeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Health.ProbeLLM = false
	prober := &mockProber{up: true}
	srv := New(cfg, &mockAnalyzer{}, prober)

	w := performRequest(srv.Handler(), http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "llm_available")
	assert.Equal(t, int32(0), prober.calls.Load())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimiting.RequestsPerSecond = 1
	cfg.RateLimiting.BurstSize = 2
	analyzer := &mockAnalyzer{result: &model.AnalysisResult{Credibility: 50}}
	srv := New(cfg, analyzer, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"claim"}`, nil)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), "Too many requests")
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int32(2), analyzer.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics().RateLimitedTotal))
}

func TestRateLimit_PreflightNotLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimiting.RequestsPerSecond = 1
	cfg.RateLimiting.BurstSize = 1
	srv := New(cfg, &mockAnalyzer{}, nil)

	for i := 0; i < 3; i++ {
		w := performRequest(srv.Handler(), http.MethodOptions, "/api/analyze", "", map[string]string{
			"Origin":                        "chrome-extension://abcdef",
			"Access-Control-Request-Method": http.MethodPost,
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRequestID(t *testing.T) {
	srv := New(testConfig(), &mockAnalyzer{}, nil)

	w := performRequest(srv.Handler(), http.MethodGet, "/api/health", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = performRequest(srv.Handler(), http.MethodGet, "/api/health", "", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	w = performRequest(srv.Handler(), http.MethodGet, "/api/health", "", map[string]string{requestIDHeader: strings.Repeat("x", 200)})
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New(testConfig(), &mockAnalyzer{result: &model.AnalysisResult{Credibility: 80}}, nil)
	performRequest(srv.Handler(), http.MethodPost, "/api/analyze", `{"content":"claim"}`, nil)

	w := performRequest(srv.Handler(), http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "truthguard_http_requests_total")
	assert.Contains(t, w.Body.String(), "truthguard_analyze_credibility_score")
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Metrics = false
	srv := New(cfg, &mockAnalyzer{}, nil)

	w := performRequest(srv.Handler(), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	srv := New(cfg, &mockAnalyzer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
