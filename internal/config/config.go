package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// StateFileName is the append-only processed-episodes log inside OutputDir.
// The name is part of the external interface; host tooling tails it.
const StateFileName = ".processed_episodes.log"

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	ImportDir string `toml:"import_dir"`
	LogDir    string `toml:"log_dir"`
}

// Feeds contains feed polling configuration.
type Feeds struct {
	URLs []string `toml:"urls"`
	// CheckInterval is the sleep between passes, in seconds.
	CheckInterval int `toml:"check_interval"`
	// ImportCheckInterval replaces CheckInterval when only the import
	// directory is configured, in seconds.
	ImportCheckInterval int `toml:"import_check_interval"`
	LookbackDays        int `toml:"lookback_days"`
}

// Engine contains transcription engine selection and tuning.
type Engine struct {
	Name   string `toml:"name"`
	Model  string `toml:"model"`
	Device string `toml:"device"`
	// ComputeType selects precision; only the faster-whisper engine uses it.
	ComputeType string `toml:"compute_type"`
}

// Processing contains episode pipeline behavior.
type Processing struct {
	KeepAudio        bool `toml:"keep_audio"`
	DownloadTimeout  int  `toml:"download_timeout"`
	DownloadAttempts int  `toml:"download_attempts"`
	// StagingGraceMinutes is how long import staging residue may sit before
	// it is quarantined as crash leftovers.
	StagingGraceMinutes int `toml:"staging_grace_minutes"`
}

// Notifications contains Discord webhook delivery settings.
type Notifications struct {
	DiscordWebhookURL string `toml:"discord_webhook_url"`
	RequestTimeout    int    `toml:"request_timeout"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for podscribe.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Feeds         Feeds         `toml:"feeds"`
	Engine        Engine        `toml:"engine"`
	Processing    Processing    `toml:"processing"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/podscribe/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies
// environment overrides. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TranscriptsDir returns the final transcript output directory.
func (c *Config) TranscriptsDir() string {
	return filepath.Join(c.Paths.OutputDir, "transcripts")
}

// AudioDir returns the retained-audio output directory. Audio working
// files live here under a temporary name until transcription completes.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.OutputDir, "mp3")
}

// StateFile returns the path of the append-only processed-episodes log.
func (c *Config) StateFile() string {
	return filepath.Join(c.Paths.OutputDir, StateFileName)
}

// StagingDir returns the internal import staging directory. It must not be
// populated manually.
func (c *Config) StagingDir() string {
	if c.Paths.ImportDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.ImportDir, ".staging")
}

// QuarantineDir holds import staging residue left behind by a crash.
func (c *Config) QuarantineDir() string {
	if c.Paths.ImportDir == "" {
		return ""
	}
	return filepath.Join(c.StagingDir(), "quarantine")
}

// ImportEnabled reports whether a watched import directory is configured.
func (c *Config) ImportEnabled() bool {
	return strings.TrimSpace(c.Paths.ImportDir) != ""
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.OutputDir,
		c.TranscriptsDir(),
		c.AudioDir(),
		c.Paths.LogDir,
	}
	if c.ImportEnabled() {
		dirs = append(dirs, c.Paths.ImportDir, c.StagingDir(), c.QuarantineDir())
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves ~ and relative segments into an absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
