package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ppiankov/truthguard/internal/pipeline"
	"github.com/ppiankov/truthguard/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API used by the browser extension",
	Long: `Serve exposes POST /api/analyze, GET /api/health and GET /metrics.

Example:
  truthguard serve
  truthguard serve --addr :8080 --rps 0
  TRUTHGUARD_LLM_PROVIDER=ollama TRUTHGUARD_LLM_MODEL=llama3.1:8b truthguard serve`,
	Args: cobra.NoArgs,
	PreRunE: bindFlags(map[string]string{
		"addr":    "server.addr",
		"metrics": "server.metrics",
		"rps":     "rate_limiting.requests_per_second",
		"burst":   "rate_limiting.burst_size",
	}),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().Bool("metrics", true, "expose Prometheus metrics on /metrics")
	serveCmd.Flags().Float64("rps", 0, "per-client requests per second, 0 disables limiting (default 5)")
	serveCmd.Flags().Int("burst", 0, "per-client burst size (default 10)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	var prober server.Prober
	if pr, ok := p.Explainer().(server.Prober); ok {
		prober = pr
	}

	srv := server.New(cfg, p, prober)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case s := <-sig:
			slog.Info("received signal", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("starting truthguard",
		"version", Version,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"rate_limit_rps", cfg.RateLimiting.RequestsPerSecond,
	)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
