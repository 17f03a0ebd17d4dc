package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/truthguard/internal/cache"
	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/worker"
)

const limiterIdle = 10 * time.Minute

// Server is the HTTP API in front of the analysis pipeline
type Server struct {
	cfg      *model.Config
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *Metrics
	limiter  *worker.Limiter
	health   *cache.MemoryCache
}

// New wires routes and middleware. prober may be nil to skip LLM health probes.
func New(cfg *model.Config, analyzer Analyzer, prober Prober) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		registry: registry,
		metrics:  NewMetrics(registry),
		health:   cache.NewMemoryCache(cfg.Health.CacheTTL, 5*time.Minute),
	}
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		s.limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	s.engine = s.routes(analyzer, prober)
	return s
}

func (s *Server) routes(analyzer Analyzer, prober Prober) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(s.metrics))

	// Any origin: requests come from a browser extension on arbitrary pages
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", "Accept"},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		analyze := []gin.HandlerFunc{HandleAnalyze(analyzer, s.metrics)}
		if s.limiter != nil {
			analyze = append([]gin.HandlerFunc{RateLimit(s.limiter, s.metrics)}, analyze...)
		}
		api.POST("/analyze", analyze...)
		api.GET("/health", HandleHealth(prober, s.health, s.cfg.Health, s.metrics))
	}

	if s.cfg.Server.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})))
	}

	return r
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the API collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.Info("truthguard listening", "addr", s.cfg.Server.Addr, "metrics", s.cfg.Server.Metrics)

	if s.limiter != nil {
		go s.sweepLimiter(ctx)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("shutting down", "timeout", timeout)
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepLimiter drops idle client buckets so the map does not grow unbounded
func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Sweep(limiterIdle); n > 0 {
				slog.Debug("swept idle rate limiters", "removed", n, "tracked", s.limiter.Len())
			}
		}
	}
}
