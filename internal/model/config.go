package model

import "time"

// Config is the complete truthguard configuration
type Config struct {
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Health       HealthConfig       `yaml:"health" mapstructure:"health"`
	Relay        RelayConfig        `yaml:"relay" mapstructure:"relay"`
	Fetch        FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ServerConfig controls the HTTP backend
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Metrics         bool          `yaml:"metrics" mapstructure:"metrics"`
}

// LLMConfig selects and tunes the chat completion provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv   string  `yaml:"api_key_env" mapstructure:"api_key_env"` // read on every request
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitingConfig limits requests per client; RequestsPerSecond <= 0 disables it
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HealthConfig controls the upstream availability probe
type HealthConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	ProbeLLM     bool          `yaml:"probe_llm" mapstructure:"probe_llm"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
}

// RelayConfig mirrors the browser extension settings
type RelayConfig struct {
	ServerURL    string        `yaml:"server_url" mapstructure:"server_url"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	MinSelection int           `yaml:"min_selection" mapstructure:"min_selection"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// FetchConfig controls article fetching for analyze --url
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConcurrencyConfig controls batch mode
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "hunyuan-turbo",
			BaseURL:     "https://api.hunyuan.cloud.tencent.com/v1",
			APIKeyEnv:   "HUNYUAN_API_KEY",
			Temperature: 0.2,
			MaxTokens:   400,
			Timeout:     30,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         10,
		},
		Health: HealthConfig{
			CacheTTL:     30 * time.Second,
			ProbeLLM:     true,
			ProbeTimeout: 5 * time.Second,
		},
		Relay: RelayConfig{
			ServerURL:    "http://localhost:3000",
			MaxRetries:   3,
			RetryDelay:   time.Second,
			MinSelection: 50,
			Timeout:      60 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "truthguard/0.1 (+https://github.com/ppiankov/truthguard)",
			MaxBytes:      2_000_000,
			RespectRobots: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
