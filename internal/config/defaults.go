package config

const (
	defaultBaseURL            = "http://localhost:8000"
	defaultWSURL              = "ws://localhost:8000"
	defaultUserID             = "anonymous"
	defaultLanguage           = "hi"
	defaultTimeoutSeconds     = 30
	defaultRetryAttempts      = 3
	defaultRetryBaseDelay     = 1
	defaultReconnectSeconds   = 3
	defaultTelemetryBuffer    = 50
	defaultMaxRecordSeconds   = 30
	defaultHealthTimeout      = 5
	defaultDataDir            = "~/.local/share/studio"
	defaultLogDir             = "~/.local/share/studio/logs"
	defaultBrandsDir          = "~/.config/studio/brands"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultDemoBind           = "127.0.0.1:8000"
	defaultDemoEventInterval  = 2
	defaultFeedLimit          = 20
	defaultExportPlatform     = "instagram"
	defaultCampaignGoal       = "engagement"
	defaultTrackReadSeconds   = 120
	defaultTrackScrollDepth   = 0.8
	defaultConfigRelativePath = "~/.config/studio/config.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:              defaultBaseURL,
			UserID:               defaultUserID,
			Language:             defaultLanguage,
			TimeoutSeconds:       defaultTimeoutSeconds,
			HealthTimeoutSeconds: defaultHealthTimeout,
		},
		Retry: Retry{
			MaxAttempts:      defaultRetryAttempts,
			BaseDelaySeconds: defaultRetryBaseDelay,
		},
		Telemetry: Telemetry{
			ReconnectSeconds: defaultReconnectSeconds,
			BufferSize:       defaultTelemetryBuffer,
		},
		Voice: Voice{
			MaxRecordSeconds: defaultMaxRecordSeconds,
		},
		Feed: Feed{
			Limit:           defaultFeedLimit,
			ReadTimeSeconds: defaultTrackReadSeconds,
			ScrollDepth:     defaultTrackScrollDepth,
		},
		Social: Social{
			CampaignGoal: defaultCampaignGoal,
		},
		Videos: Videos{
			DefaultPlatforms: []string{defaultExportPlatform},
		},
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			BrandsDir: defaultBrandsDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Demo: Demo{
			Bind:                 defaultDemoBind,
			EventIntervalSeconds: defaultDemoEventInterval,
		},
	}
}
