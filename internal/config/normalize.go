package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeeds()
	c.normalizeEngine()
	c.normalizeProcessing()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if trimmed := strings.TrimSpace(c.Paths.ImportDir); trimmed == "" {
		c.Paths.ImportDir = ""
	} else if c.Paths.ImportDir, err = ExpandPath(trimmed); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.OutputDir, "logs")
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeeds() {
	urls := make([]string, 0, len(c.Feeds.URLs))
	seen := make(map[string]struct{}, len(c.Feeds.URLs))
	for _, url := range c.Feeds.URLs {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		urls = append(urls, trimmed)
	}
	c.Feeds.URLs = urls

	if c.Feeds.CheckInterval <= 0 {
		c.Feeds.CheckInterval = defaultCheckInterval
	}
	if c.Feeds.ImportCheckInterval <= 0 {
		c.Feeds.ImportCheckInterval = defaultImportCheckInterval
	}
	if c.Feeds.LookbackDays <= 0 {
		c.Feeds.LookbackDays = defaultLookbackDays
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.Name = strings.ToLower(strings.TrimSpace(c.Engine.Name))
	if c.Engine.Name == "" {
		c.Engine.Name = defaultEngineName
	}
	c.Engine.Model = strings.TrimSpace(c.Engine.Model)
	if c.Engine.Model == "" {
		c.Engine.Model = defaultEngineModel
	}
	c.Engine.Device = strings.ToLower(strings.TrimSpace(c.Engine.Device))
	if c.Engine.Device == "" {
		c.Engine.Device = defaultEngineDevice
	}
	c.Engine.ComputeType = strings.ToLower(strings.TrimSpace(c.Engine.ComputeType))
	if c.Engine.ComputeType == "" {
		c.Engine.ComputeType = defaultComputeType
	}
}

func (c *Config) normalizeProcessing() {
	if c.Processing.DownloadTimeout <= 0 {
		c.Processing.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Processing.DownloadAttempts <= 0 {
		c.Processing.DownloadAttempts = defaultDownloadAttempts
	}
	if c.Processing.StagingGraceMinutes <= 0 {
		c.Processing.StagingGraceMinutes = defaultStagingGraceMinutes
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.DiscordWebhookURL = strings.TrimSpace(c.Notifications.DiscordWebhookURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
