package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthguard/internal/model"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("TRUTHGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := decodeConfig(newTestViper())
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Server.Addr != want.Server.Addr {
		t.Errorf("Expected addr %s, got %s", want.Server.Addr, cfg.Server.Addr)
	}
	if cfg.LLM.MaxTokens != 400 {
		t.Errorf("Expected max tokens 400, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Health.CacheTTL != 30*time.Second {
		t.Errorf("Expected health cache TTL 30s, got %v", cfg.Health.CacheTTL)
	}
	if cfg.Relay.RetryDelay != time.Second {
		t.Errorf("Expected relay retry delay 1s, got %v", cfg.Relay.RetryDelay)
	}
	if cfg.Fetch.MaxBytes != 2_000_000 {
		t.Errorf("Expected fetch max bytes 2000000, got %d", cfg.Fetch.MaxBytes)
	}
}

func TestDecodeConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRUTHGUARD_SERVER_ADDR", ":8080")
	t.Setenv("TRUTHGUARD_LLM_PROVIDER", "ollama")
	t.Setenv("TRUTHGUARD_RATE_LIMITING_REQUESTS_PER_SECOND", "0")
	t.Setenv("TRUTHGUARD_HEALTH_CACHE_TTL", "2m")

	cfg, err := decodeConfig(newTestViper())
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.RateLimiting.RequestsPerSecond != 0 {
		t.Errorf("Expected rate limiting disabled, got %v", cfg.RateLimiting.RequestsPerSecond)
	}
	if cfg.Health.CacheTTL != 2*time.Minute {
		t.Errorf("Expected health cache TTL 2m, got %v", cfg.Health.CacheTTL)
	}
}

func TestDecodeConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "llm:\n  model: gpt-4o-mini\nrelay:\n  max_retries: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Expected model from file, got %s", cfg.LLM.Model)
	}
	if cfg.Relay.MaxRetries != 5 {
		t.Errorf("Expected max retries 5, got %d", cfg.Relay.MaxRetries)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected default provider to survive, got %s", cfg.LLM.Provider)
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDefaultConfig(&buf); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if !strings.Contains(buf.String(), "# Truth Guard Configuration File") {
		t.Error("Expected header comment")
	}
	if !strings.Contains(buf.String(), "cache_ttl: 30s") {
		t.Errorf("Expected durations rendered as strings, got:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := viper.New()
	setDefaults(v, &model.Config{})
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":3000" || cfg.Relay.MinSelection != 50 {
		t.Errorf("Expected defaults from file, got %+v", cfg)
	}
}

func TestReadContent(t *testing.T) {
	got, err := readContent([]string{"the", "moon", "landing"}, "", nil)
	if err != nil || got != "the moon landing" {
		t.Errorf("Expected joined args, got %q (%v)", got, err)
	}

	path := filepath.Join(t.TempDir(), "claim.txt")
	if err := os.WriteFile(path, []byte("from file"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err = readContent(nil, path, nil)
	if err != nil || got != "from file" {
		t.Errorf("Expected file content, got %q (%v)", got, err)
	}

	got, err = readContent(nil, "", strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Errorf("Expected stdin content, got %q (%v)", got, err)
	}

	if _, err := readContent(nil, filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBindFlags(t *testing.T) {
	defer viper.Reset()

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("server", "", "")
	if err := cmd.Flags().Set("server", "http://example.test:9000"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if err := bindFlags(map[string]string{"server": "relay.server_url"})(cmd, nil); err != nil {
		t.Fatalf("bindFlags failed: %v", err)
	}
	if got := viper.GetString("relay.server_url"); got != "http://example.test:9000" {
		t.Errorf("Expected flag value bound, got %q", got)
	}

	if err := bindFlags(map[string]string{"missing": "relay.server_url"})(cmd, nil); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	setupLogging(&buf, false, "json")
	slog.Debug("hidden")
	slog.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug suppressed without --verbose")
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("Expected JSON attrs, got %s", out)
	}

	buf.Reset()
	setupLogging(&buf, true, "text")
	slog.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("Expected debug line in text format, got %s", buf.String())
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short"); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	long := strings.Repeat("é", 100)
	got := preview(long)
	if len([]rune(got)) != 60 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 60-rune preview ending in ..., got %q", got)
	}
}
