package config

const (
	defaultInboxDir            = "~/mailroom/inbox"
	defaultLogDir              = "~/.local/share/mailroom/logs"
	defaultExportDir           = "~/mailroom/exports"
	defaultCatalogPath         = "~/.local/share/mailroom/catalog.db"
	defaultModel               = "claude-sonnet-4-5-20250929"
	defaultMaxAttempts         = 6
	defaultRetryBaseDelayMS    = 1000
	defaultRetryMaxDelayMS     = 30000
	defaultTimeoutSeconds      = 120
	defaultRemoteTimeout       = 30
	defaultPacingSeconds       = 8
	defaultPollIntervalSeconds = 60
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:    defaultInboxDir,
			LogDir:      defaultLogDir,
			ExportDir:   defaultExportDir,
			CatalogPath: defaultCatalogPath,
		},
		Extraction: Extraction{
			Model:            defaultModel,
			MaxAttempts:      defaultMaxAttempts,
			RetryBaseDelayMS: defaultRetryBaseDelayMS,
			RetryMaxDelayMS:  defaultRetryMaxDelayMS,
			TimeoutSeconds:   defaultTimeoutSeconds,
		},
		Remote: Remote{
			RequestTimeout: defaultRemoteTimeout,
		},
		Engine: Engine{
			PacingSeconds:       defaultPacingSeconds,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
