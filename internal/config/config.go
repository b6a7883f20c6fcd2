package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains the backend endpoints and request identity.
type API struct {
	BaseURL              string `toml:"base_url"`
	WSURL                string `toml:"ws_url"`
	UserID               string `toml:"user_id"`
	Language             string `toml:"language"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	HealthTimeoutSeconds int    `toml:"health_timeout_seconds"`
}

// Retry contains the retry budget for outbound requests.
type Retry struct {
	MaxAttempts      int `toml:"max_attempts"`
	BaseDelaySeconds int `toml:"base_delay_seconds"`
}

// Telemetry contains live event stream settings.
type Telemetry struct {
	ReconnectSeconds int  `toml:"reconnect_seconds"`
	BufferSize       int  `toml:"buffer_size"`
	Record           bool `toml:"record"`
}

// Voice contains voice assistant settings.
type Voice struct {
	MaxRecordSeconds int `toml:"max_record_seconds"`
}

// Feed contains personalized feed settings.
type Feed struct {
	Limit           int     `toml:"limit"`
	ReadTimeSeconds int     `toml:"read_time_seconds"`
	ScrollDepth     float64 `toml:"scroll_depth"`
}

// Social contains content generation settings.
type Social struct {
	CampaignGoal string `toml:"campaign_goal"`
	DefaultBrand string `toml:"default_brand"`
}

// Videos contains video editor settings.
type Videos struct {
	DefaultPlatforms []string `toml:"default_platforms"`
}

// Paths contains local directories used by the CLI.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	BrandsDir string `toml:"brands_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Demo contains settings for the bundled demo backend.
type Demo struct {
	Bind                 string `toml:"bind"`
	EventIntervalSeconds int    `toml:"event_interval_seconds"`
}

// Config encapsulates all configuration values for studio.
//
// Configuration sections by subsystem:
//   - API: backend base URLs, user identity, request timeouts
//   - Retry: attempt budget and backoff base for the API client
//   - Telemetry: reconnect delay and event buffer size
//   - Voice: recording limits
//   - Feed, Social, Videos: per-view request defaults
//   - Paths: data, log, and brand profile directories
//   - Logging: log format and level
//   - Demo: bundled demo backend
//
// DemoMode opts in to substituting demo fixtures when the admin view cannot
// reach the backend. It is off unless explicitly enabled.
type Config struct {
	DemoMode  bool      `toml:"demo_mode"`
	API       API       `toml:"api"`
	Retry     Retry     `toml:"retry"`
	Telemetry Telemetry `toml:"telemetry"`
	Voice     Voice     `toml:"voice"`
	Feed      Feed      `toml:"feed"`
	Social    Social    `toml:"social"`
	Videos    Videos    `toml:"videos"`
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	Demo      Demo      `toml:"demo"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigRelativePath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and URLs normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigRelativePath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("studio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the SQLite journal location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.DataDir, "journal.db")
}

// LogPath returns the CLI log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "studio.log")
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// HealthTimeout returns the fixed timeout used by the health probe.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.API.HealthTimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the base of the exponential backoff.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelaySeconds) * time.Second
}

// ReconnectDelay returns the fixed telemetry reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Telemetry.ReconnectSeconds) * time.Second
}

// MaxRecordDuration returns the voice auto-stop limit.
func (c *Config) MaxRecordDuration() time.Duration {
	return time.Duration(c.Voice.MaxRecordSeconds) * time.Second
}

// DemoEventInterval returns how often the demo backend emits telemetry events.
func (c *Config) DemoEventInterval() time.Duration {
	return time.Duration(c.Demo.EventIntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
