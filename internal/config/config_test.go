package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediastudio/internal/config"
)

func clearStudioEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"STUDIO_API_URL", "NEXT_PUBLIC_API_URL", "STUDIO_WS_URL", "NEXT_PUBLIC_WS_URL", "STUDIO_DEMO_MODE"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPathsAndDerivesWSURL(t *testing.T) {
	clearStudioEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "studio")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.WSURL != "ws://localhost:8000" {
		t.Fatalf("expected ws url derived from base url, got %q", cfg.API.WSURL)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.RetryBaseDelay() != time.Second {
		t.Fatalf("expected 1s base delay, got %s", cfg.RetryBaseDelay())
	}
	if cfg.ReconnectDelay() != 3*time.Second {
		t.Fatalf("expected 3s reconnect delay, got %s", cfg.ReconnectDelay())
	}
	if cfg.Telemetry.BufferSize != 50 {
		t.Fatalf("expected buffer size 50, got %d", cfg.Telemetry.BufferSize)
	}
	if cfg.HealthTimeout() != 5*time.Second {
		t.Fatalf("expected 5s health timeout, got %s", cfg.HealthTimeout())
	}
	if cfg.MaxRecordDuration() != 30*time.Second {
		t.Fatalf("expected 30s recording limit, got %s", cfg.MaxRecordDuration())
	}
	if cfg.DemoMode {
		t.Fatal("expected demo mode disabled by default")
	}
	if got := cfg.Videos.DefaultPlatforms; len(got) != 1 || got[0] != "instagram" {
		t.Fatalf("unexpected default platforms: %v", got)
	}
	if cfg.JournalPath() != filepath.Join(wantData, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
}

func TestLoadHonoursEnvironmentFallbacks(t *testing.T) {
	clearStudioEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NEXT_PUBLIC_API_URL", "https://media.example.com/")
	t.Setenv("STUDIO_DEMO_MODE", "true")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://media.example.com" {
		t.Fatalf("expected legacy env base url with trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.WSURL != "wss://media.example.com" {
		t.Fatalf("expected wss url derived from https base, got %q", cfg.API.WSURL)
	}
	if !cfg.DemoMode {
		t.Fatal("expected demo mode from STUDIO_DEMO_MODE")
	}

	t.Setenv("STUDIO_API_URL", "http://primary:9000")
	cfg, _, _, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://primary:9000" {
		t.Fatalf("expected STUDIO_API_URL to take precedence, got %q", cfg.API.BaseURL)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	clearStudioEnv(t)
	t.Setenv("HOME", t.TempDir())
	base := t.TempDir()
	path := filepath.Join(base, "studio.toml")

	cfg := config.Default()
	cfg.API.BaseURL = "http://backend:8080"
	cfg.API.WSURL = "ws://telemetry:8081"
	cfg.Retry.MaxAttempts = 5
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Videos.DefaultPlatforms = []string{" TikTok ", "youtube", "tiktok"}
	cfg.Logging.Format = "JSON"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to exist, got %q exists=%v", path, resolved, exists)
	}
	if loaded.API.WSURL != "ws://telemetry:8081" {
		t.Fatalf("explicit ws url should be kept, got %q", loaded.API.WSURL)
	}
	if loaded.Retry.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", loaded.Retry.MaxAttempts)
	}
	if got := strings.Join(loaded.Videos.DefaultPlatforms, ","); got != "tiktok,youtube" {
		t.Fatalf("expected platforms normalized and deduplicated, got %q", got)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", loaded.Logging.Format)
	}
}

func TestValidateRejectsBadURLs(t *testing.T) {
	clearStudioEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "studio.toml")
	if err := os.WriteFile(path, []byte("[api]\nbase_url = \"ftp://nope\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "api.base_url") {
		t.Fatalf("expected api.base_url validation error, got %v", err)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.API.WSURL = "ws://localhost:8000"
	cfg.Logging.Level = "chatty"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown log level to fail validation")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearStudioEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Telemetry.BufferSize != 50 {
		t.Fatalf("unexpected sample buffer size %d", cfg.Telemetry.BufferSize)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.DemoMode = true
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(data), "demo_mode = true") {
		t.Fatalf("expected demo_mode in encoded config, got:\n%s", data)
	}
}
