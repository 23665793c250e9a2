package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeRemote()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		c.Paths.InboxDir = defaultInboxDir
	}
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.APIKey = strings.TrimSpace(c.Extraction.APIKey)
	if c.Extraction.APIKey == "" {
		c.Extraction.APIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	}
	c.Extraction.Model = strings.TrimSpace(c.Extraction.Model)
	if c.Extraction.Model == "" {
		c.Extraction.Model = defaultModel
	}
	if c.Extraction.MaxAttempts <= 0 {
		c.Extraction.MaxAttempts = defaultMaxAttempts
	}
	if c.Extraction.RetryBaseDelayMS <= 0 {
		c.Extraction.RetryBaseDelayMS = defaultRetryBaseDelayMS
	}
	if c.Extraction.RetryMaxDelayMS <= 0 {
		c.Extraction.RetryMaxDelayMS = defaultRetryMaxDelayMS
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	c.Remote.Token = strings.TrimSpace(c.Remote.Token)
	c.Remote.Location = strings.TrimSpace(c.Remote.Location)
	if c.Remote.RequestTimeout <= 0 {
		c.Remote.RequestTimeout = defaultRemoteTimeout
	}
}

func (c *Config) normalizeEngine() {
	if c.Engine.PacingSeconds < 0 {
		c.Engine.PacingSeconds = defaultPacingSeconds
	}
	if c.Engine.PollIntervalSeconds <= 0 {
		c.Engine.PollIntervalSeconds = defaultPollIntervalSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
