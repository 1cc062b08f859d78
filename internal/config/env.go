package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// applyEnv layers the original container environment interface over the
// file-based configuration. Real environment variables win over .env
// entries, which win over the TOML file.
func (c *Config) applyEnv() error {
	// godotenv.Load never overrides variables already present in the
	// environment, which is exactly the precedence we want.
	_ = godotenv.Load()

	if value, ok := lookup("PODCAST_FEEDS"); ok {
		c.Feeds.URLs = splitFeedList(value)
	}
	if value, ok := lookup("IMPORT_DIR"); ok {
		c.Paths.ImportDir = value
	}
	if value, ok := lookup("OUTPUT_DIR"); ok {
		c.Paths.OutputDir = value
	}
	if value, ok := lookup("TRANSCRIPTION_ENGINE"); ok {
		c.Engine.Name = value
	}
	if value, ok := lookup("WHISPER_MODEL"); ok {
		c.Engine.Model = value
	}
	if value, ok := lookup("DEVICE"); ok {
		c.Engine.Device = value
	}
	if value, ok := lookup("COMPUTE_TYPE"); ok {
		c.Engine.ComputeType = value
	}
	if value, ok := lookup("DISCORD_WEBHOOK_URL"); ok {
		c.Notifications.DiscordWebhookURL = value
	}
	if value, ok := lookup("KEEP_MP3"); ok {
		c.Processing.KeepAudio = parseBool(value)
	}
	if value, ok := lookup("DEBUG_LOGGING"); ok && parseBool(value) {
		c.Logging.Level = "debug"
	}

	for env, target := range map[string]*int{
		"CHECK_INTERVAL_SECONDS":        &c.Feeds.CheckInterval,
		"IMPORT_CHECK_INTERVAL_SECONDS": &c.Feeds.ImportCheckInterval,
		"LOOKBACK_DAYS":                 &c.Feeds.LookbackDays,
	} {
		if value, ok := lookup(env); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", env, value)
			}
			*target = parsed
		}
	}

	return nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// splitFeedList splits the semicolon-delimited PODCAST_FEEDS value.
func splitFeedList(value string) []string {
	parts := strings.Split(value, ";")
	urls := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func parseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
