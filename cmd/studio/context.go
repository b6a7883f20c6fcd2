package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/config"
	"mediastudio/internal/journal"
	"mediastudio/internal/logging"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	clientOnce sync.Once
	client     *apiclient.Client
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerValue returns the configured logger, falling back to a discard
// logger when the log file cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// apiClient builds the single backend client shared by every command in
// this invocation.
func (c *commandContext) apiClient() *apiclient.Client {
	c.clientOnce.Do(func() {
		cfg := c.configValue()
		c.client = apiclient.New(apiclient.Config{
			BaseURL:              cfg.API.BaseURL,
			WSURL:                cfg.API.WSURL,
			TimeoutSeconds:       cfg.API.TimeoutSeconds,
			HealthTimeoutSeconds: cfg.API.HealthTimeoutSeconds,
		},
			apiclient.WithLogger(c.loggerValue()),
			apiclient.WithMaxAttempts(cfg.Retry.MaxAttempts),
			apiclient.WithBaseDelay(cfg.RetryBaseDelay()),
		)
	})
	return c.client
}

// openJournal opens the local journal; callers close it.
func (c *commandContext) openJournal() (*journal.Store, error) {
	store, err := journal.Open(c.configValue())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
