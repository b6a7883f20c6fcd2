package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDemoMode()
	c.normalizeAPI()
	c.normalizeRetry()
	c.normalizeTelemetry()
	c.normalizeViews()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeDemo()
	return nil
}

func (c *Config) normalizeDemoMode() {
	if value, ok := os.LookupEnv("STUDIO_DEMO_MODE"); ok {
		if enabled, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			c.DemoMode = enabled
		}
	}
}

func (c *Config) normalizeAPI() {
	if value := lookupFirstEnv("STUDIO_API_URL", "NEXT_PUBLIC_API_URL"); value != "" {
		c.API.BaseURL = value
	}
	if value := lookupFirstEnv("STUDIO_WS_URL", "NEXT_PUBLIC_WS_URL"); value != "" {
		c.API.WSURL = value
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	c.API.WSURL = strings.TrimRight(strings.TrimSpace(c.API.WSURL), "/")
	if c.API.WSURL == "" {
		c.API.WSURL = DeriveWSURL(c.API.BaseURL)
	}
	c.API.UserID = strings.TrimSpace(c.API.UserID)
	if c.API.UserID == "" {
		c.API.UserID = defaultUserID
	}
	c.API.Language = strings.ToLower(strings.TrimSpace(c.API.Language))
	if c.API.Language == "" {
		c.API.Language = defaultLanguage
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.API.HealthTimeoutSeconds <= 0 {
		c.API.HealthTimeoutSeconds = defaultHealthTimeout
	}
}

func (c *Config) normalizeRetry() {
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = defaultRetryAttempts
	}
	if c.Retry.BaseDelaySeconds < 0 {
		c.Retry.BaseDelaySeconds = defaultRetryBaseDelay
	}
}

func (c *Config) normalizeTelemetry() {
	if c.Telemetry.ReconnectSeconds <= 0 {
		c.Telemetry.ReconnectSeconds = defaultReconnectSeconds
	}
	if c.Telemetry.BufferSize <= 0 {
		c.Telemetry.BufferSize = defaultTelemetryBuffer
	}
}

func (c *Config) normalizeViews() {
	if c.Voice.MaxRecordSeconds <= 0 {
		c.Voice.MaxRecordSeconds = defaultMaxRecordSeconds
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = defaultFeedLimit
	}
	if c.Feed.ReadTimeSeconds <= 0 {
		c.Feed.ReadTimeSeconds = defaultTrackReadSeconds
	}
	if c.Feed.ScrollDepth <= 0 || c.Feed.ScrollDepth > 1 {
		c.Feed.ScrollDepth = defaultTrackScrollDepth
	}
	c.Social.CampaignGoal = strings.TrimSpace(c.Social.CampaignGoal)
	if c.Social.CampaignGoal == "" {
		c.Social.CampaignGoal = defaultCampaignGoal
	}
	c.Social.DefaultBrand = strings.TrimSpace(c.Social.DefaultBrand)

	platforms := make([]string, 0, len(c.Videos.DefaultPlatforms))
	seen := make(map[string]struct{}, len(c.Videos.DefaultPlatforms))
	for _, platform := range c.Videos.DefaultPlatforms {
		normalized := strings.ToLower(strings.TrimSpace(platform))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		platforms = append(platforms, normalized)
	}
	if len(platforms) == 0 {
		platforms = []string{defaultExportPlatform}
	}
	c.Videos.DefaultPlatforms = platforms
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BrandsDir) == "" {
		c.Paths.BrandsDir = defaultBrandsDir
	}
	if c.Paths.BrandsDir, err = expandPath(c.Paths.BrandsDir); err != nil {
		return fmt.Errorf("paths.brands_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDemo() {
	c.Demo.Bind = strings.TrimSpace(c.Demo.Bind)
	if c.Demo.Bind == "" {
		c.Demo.Bind = defaultDemoBind
	}
	if c.Demo.EventIntervalSeconds <= 0 {
		c.Demo.EventIntervalSeconds = defaultDemoEventInterval
	}
}

func lookupFirstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// DeriveWSURL maps an http(s) base URL onto its ws(s) counterpart.
func DeriveWSURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return defaultWSURL
	}
}
