package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir     string `toml:"scratch_dir"`
	DestinationDir string `toml:"destination_dir"`
	LogDir         string `toml:"log_dir"`
}

// Tools names the external executables. Values may be bare names resolved
// through PATH or absolute paths.
type Tools struct {
	Ripper     string `toml:"ripper"`
	Encoder    string `toml:"encoder"`
	ISOBuilder string `toml:"iso_builder"`
}

// Output controls how finished files are published.
type Output struct {
	Subfolder      bool   `toml:"subfolder"`
	DeleteScratch  bool   `toml:"delete_scratch"`
	NativeLanguage string `toml:"native_language"`
}

// Disc contains optical drive settings.
type Disc struct {
	DriveID          string `toml:"drive_id"`
	Device           string `toml:"device"`
	Eject            bool   `toml:"eject"`
	InventoryTimeout int    `toml:"inventory_timeout"`
}

// Library contains Jellyfin library refresh settings.
type Library struct {
	Refresh bool   `toml:"refresh"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Runner tunes subprocess observation.
type Runner struct {
	PollIntervalMS   int     `toml:"poll_interval_ms"`
	LogBucketPercent float64 `toml:"log_bucket_percent"`
}

// Profile is one named job template offered in the run menu.
type Profile struct {
	Name             string `toml:"name"`
	Enabled          *bool  `toml:"enabled"`
	Mode             string `toml:"mode"`
	Codec            string `toml:"codec"`
	Resolution       string `toml:"resolution"`
	Quality          int    `toml:"quality"`
	MinTitleLength   int    `toml:"min_title_length"`
	ForeignAudio     bool   `toml:"foreign_audio"`
	Greyscale        bool   `toml:"greyscale"`
	ExtraEncoderArgs string `toml:"extra_encoder_args"`
}

// IsEnabled reports whether the profile is offered. Profiles are enabled
// unless explicitly switched off.
func (p Profile) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Config encapsulates all configuration values for ripline.
//
// Configuration sections by subsystem:
//   - Paths: scratch, destination, and log directories
//   - Tools: ripper, encoder, and ISO builder executables
//   - Output: subfolder policy, scratch deletion, native language
//   - Disc: drive selection, eject, inventory timeout
//   - Library: Jellyfin library refresh
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Runner: progress polling and log sampling
//   - Profiles: job templates
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Output        Output        `toml:"output"`
	Disc          Disc          `toml:"disc"`
	Library       Library       `toml:"library"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Runner        Runner        `toml:"runner"`
	Profiles      []Profile     `toml:"profiles"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := LoadUnvalidated(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, exists, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnvalidated parses and normalizes a configuration file without
// validating it. The config commands use it to report every problem at once.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
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

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ripline.toml")
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

// EnsureDirectories creates the scratch and log directories. The destination
// is created on a best-effort basis so runs that only rip into scratch still
// work while network storage is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.DestinationDir) != "" {
		_ = os.MkdirAll(c.Paths.DestinationDir, 0o755)
	}
	return nil
}

// EnabledProfiles returns the profiles offered in the run menu, in file order.
func (c *Config) EnabledProfiles() []Profile {
	out := make([]Profile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "ripline.lock")
}

// PollInterval is the runner's output poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Runner.PollIntervalMS) * time.Millisecond
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
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
