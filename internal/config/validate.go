package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url: value is required")
	}
	if c.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote.timeout_seconds: must be positive, got %d", c.Remote.TimeoutSeconds)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return fmt.Errorf("paths.state_dir: value is required")
	}
	if c.Sync.PollIntervalSeconds <= 0 {
		return fmt.Errorf("sync.poll_interval_seconds: must be positive, got %d", c.Sync.PollIntervalSeconds)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
