package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The extraction API key is
// checked where analysis actually starts, not here, so read-only commands
// work without credentials.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.MaxAttempts > 20 {
		return errors.New("extraction.max_attempts must be 20 or fewer")
	}
	if c.Extraction.RetryMaxDelayMS < c.Extraction.RetryBaseDelayMS {
		return errors.New("extraction.retry_max_delay_ms must be >= extraction.retry_base_delay_ms")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if !c.Remote.Enabled {
		return nil
	}
	if c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required when remote.enabled is true")
	}
	if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
		return fmt.Errorf("remote.base_url must be an http(s) URL, got %q", c.Remote.BaseURL)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.PacingSeconds > 600 {
		return errors.New("engine.pacing_seconds must be 600 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
