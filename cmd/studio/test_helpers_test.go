package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediastudio/internal/config"
	"mediastudio/internal/demo"
	"mediastudio/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *demo.Server
	baseURL    string
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"STUDIO_API_URL", "NEXT_PUBLIC_API_URL", "STUDIO_WS_URL", "NEXT_PUBLIC_WS_URL", "STUDIO_DEMO_MODE"} {
		t.Setenv(key, "")
	}
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	server, baseURL := testsupport.StartDemoBackend(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBackend(baseURL)}, opts...)...)
	cfg.Retry.BaseDelaySeconds = 0

	env := &cliTestEnv{
		cfg:        cfg,
		server:     server,
		baseURL:    baseURL,
		configPath: filepath.Join(base, "studio.toml"),
		baseDir:    base,
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := e.cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
