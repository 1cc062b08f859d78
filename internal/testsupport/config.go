package testsupport

import (
	"path/filepath"
	"testing"

	"podscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test,
// an import directory enabled, and all required directories created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.ImportDir = filepath.Join(base, "import")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Feeds.URLs = nil
	cfg.Processing.DownloadAttempts = 1
	cfg.Processing.DownloadTimeout = 5

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithoutImportDir disables the import directory on the test config.
func WithoutImportDir() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.ImportDir = ""
	}
}

// WithKeepAudio enables audio retention on the test config.
func WithKeepAudio() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.KeepAudio = true
	}
}

// WithFeeds sets the configured feed URLs.
func WithFeeds(urls ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Feeds.URLs = urls
	}
}
