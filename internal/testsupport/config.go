package testsupport

import (
	"path/filepath"
	"testing"

	"mediastudio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retry delays are kept at their defaults; callers that hit failing endpoints
// should inject a sleeper on the client instead.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.BrandsDir = filepath.Join(base, "brands")
	cfgVal.Demo.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend points the API and telemetry URLs at baseURL.
func WithBackend(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = baseURL
		b.cfg.API.WSURL = config.DeriveWSURL(baseURL)
	}
}

// WithDemoMode toggles fixture substitution.
func WithDemoMode(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DemoMode = enabled
	}
}

// WithBrandsDir overrides the brand profile directory.
func WithBrandsDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.BrandsDir = dir
	}
}
