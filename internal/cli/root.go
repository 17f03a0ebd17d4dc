package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthguard/internal/model"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthguard",
	Short: "Truth Guard - heuristic credibility scoring for text",
	Long: `Truth Guard sends text to an LLM, asks for a structured fact-check
narrative, and derives a 0-100 credibility score and a list of warnings
from that narrative.

The score is a heuristic over the model's own wording. It is not a
verification against real sources.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(os.Stderr, verbose, logFormat)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("truthguard %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and TRUTHGUARD_* environment variables
func initConfig() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".truthguard"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// TRUTHGUARD_SERVER_ADDR overrides server.addr, and so on
	viper.SetEnvPrefix("TRUTHGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.metrics", d.Server.Metrics)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.api_key_env", d.LLM.APIKeyEnv)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)
	v.SetDefault("llm.no_proxy", d.LLM.NoProxy)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("health.cache_ttl", d.Health.CacheTTL)
	v.SetDefault("health.probe_llm", d.Health.ProbeLLM)
	v.SetDefault("health.probe_timeout", d.Health.ProbeTimeout)

	v.SetDefault("relay.server_url", d.Relay.ServerURL)
	v.SetDefault("relay.max_retries", d.Relay.MaxRetries)
	v.SetDefault("relay.retry_delay", d.Relay.RetryDelay)
	v.SetDefault("relay.min_selection", d.Relay.MinSelection)
	v.SetDefault("relay.timeout", d.Relay.Timeout)

	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_bytes", d.Fetch.MaxBytes)
	v.SetDefault("fetch.respect_robots", d.Fetch.RespectRobots)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("output.verbose", d.Output.Verbose)
}

// bindFlags binds command flags to config keys when the command runs, so
// flags shared by name across commands do not overwrite each other's binding
func bindFlags(keys map[string]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for name, key := range keys {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
		return nil
	}
}

// loadConfig resolves the effective configuration from viper
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the default slog logger
func setupLogging(w io.Writer, verbose bool, format string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
