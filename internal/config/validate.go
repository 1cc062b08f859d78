package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSources() error {
	if len(c.Feeds.URLs) == 0 && !c.ImportEnabled() {
		return errors.New("at least one of feeds.urls or paths.import_dir must be set (or PODCAST_FEEDS / IMPORT_DIR)")
	}
	for _, url := range c.Feeds.URLs {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("feeds.urls entry %q must be an http(s) URL", url)
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	switch c.Engine.Name {
	case EngineWhisper, EngineFasterWhisper:
	default:
		return fmt.Errorf("engine.name %q is not supported (expected %s or %s)", c.Engine.Name, EngineWhisper, EngineFasterWhisper)
	}
	if c.Engine.Model == "" {
		return errors.New("engine.model must be set")
	}
	if c.Engine.Device == "" {
		return errors.New("engine.device must be set")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	for key, value := range map[string]int{
		"feeds.check_interval":            c.Feeds.CheckInterval,
		"feeds.import_check_interval":     c.Feeds.ImportCheckInterval,
		"feeds.lookback_days":             c.Feeds.LookbackDays,
		"processing.download_timeout":     c.Processing.DownloadTimeout,
		"processing.download_attempts":    c.Processing.DownloadAttempts,
		"processing.staging_grace_minutes": c.Processing.StagingGraceMinutes,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if url := c.Notifications.DiscordWebhookURL; url != "" {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return errors.New("notifications.discord_webhook_url must be an http(s) URL")
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
