package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ripline/internal/config"
	"ripline/internal/services"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ripline.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWithoutDestinationIsIncomplete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, resolved, exists, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without destination_dir")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if services.Classify(err) != services.KindConfiguration {
		t.Fatalf("unexpected classification %q", services.Classify(err))
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
}

func TestLoadExpandsPathsAndAppliesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[paths]
destination_dir = "~/movies"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DestinationDir != filepath.Join(home, "movies") {
		t.Fatalf("destination_dir = %q", cfg.Paths.DestinationDir)
	}
	if cfg.Paths.ScratchDir != filepath.Join(home, ".local", "share", "ripline", "scratch") {
		t.Fatalf("scratch_dir = %q", cfg.Paths.ScratchDir)
	}
	if cfg.Tools.Ripper != "makemkvcon" || cfg.Tools.Encoder != "HandBrakeCLI" || cfg.Tools.ISOBuilder != "mkisofs" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Runner.PollIntervalMS != 500 {
		t.Fatalf("poll interval = %d", cfg.Runner.PollIntervalMS)
	}
	if len(cfg.Profiles) != len(config.DefaultProfiles()) {
		t.Fatalf("expected default profiles, got %d", len(cfg.Profiles))
	}
	for _, p := range cfg.Profiles {
		if p.Codec == "" {
			t.Fatalf("profile %q has no codec after normalization", p.Name)
		}
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ScratchDir, cfg.Paths.LogDir, cfg.Paths.DestinationDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestLoadProfiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
[paths]
destination_dir = "/srv/media"

[[profiles]]
name = " Movies "
mode = "RIP_ENCODE"
codec = "h.264"
resolution = "720P"
quality = 22
greyscale = true

[[profiles]]
name = "Disabled"
mode = "rip"
enabled = false
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(cfg.Profiles))
	}
	p := cfg.Profiles[0]
	if p.Name != "Movies" || p.Mode != "rip_encode" || p.Codec != "H.264" || p.Resolution != "720p" {
		t.Fatalf("unexpected normalized profile: %+v", p)
	}
	if !p.Greyscale || p.Quality != 22 {
		t.Fatalf("unexpected profile flags: %+v", p)
	}
	enabled := cfg.EnabledProfiles()
	if len(enabled) != 1 || enabled[0].Name != "Movies" {
		t.Fatalf("unexpected enabled profiles: %+v", enabled)
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RIPLINE_NTFY_TOPIC", "https://ntfy.example/rips")
	t.Setenv("RIPLINE_JELLYFIN_API_KEY", "env-key")
	path := writeConfig(t, `
[paths]
destination_dir = "/srv/media"

[library]
refresh = true
url = "http://jellyfin:8096/"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/rips" {
		t.Errorf("ntfy topic = %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Library.APIKey != "env-key" {
		t.Errorf("library api key = %q", cfg.Library.APIKey)
	}
	if cfg.Library.URL != "http://jellyfin:8096" {
		t.Errorf("library url = %q", cfg.Library.URL)
	}
}

func TestEnvDoesNotOverrideFileValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RIPLINE_NTFY_TOPIC", "from-env")
	path := writeConfig(t, `
[paths]
destination_dir = "/srv/media"

[notifications]
ntfy_topic = "from-file"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "from-file" {
		t.Fatalf("ntfy topic = %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.ScratchDir, "ripline") {
		t.Fatalf("expected scratch dir to mention ripline, got %q", cfg.Paths.ScratchDir)
	}

	t.Setenv("HOME", t.TempDir())
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
	if len(loaded.EnabledProfiles()) == 0 {
		t.Fatal("sample config should enable at least one profile")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.ScratchDir = "/tmp/scratch"
		cfg.Paths.DestinationDir = "/tmp/dest"
		cfg.Profiles = []config.Profile{{Name: "A", Mode: "rip", Codec: "H.265"}}
		return cfg
	}

	if cfg := base(); cfg.Validate() != nil {
		t.Fatalf("base config should validate: %v", cfg.Validate())
	}

	tests := []struct {
		name       string
		mutate     func(*config.Config)
		wantConfig bool
	}{
		{"missing encoder", func(c *config.Config) { c.Tools.Encoder = "" }, true},
		{"missing iso builder", func(c *config.Config) { c.Tools.ISOBuilder = " " }, true},
		{"same scratch and destination", func(c *config.Config) { c.Paths.DestinationDir = c.Paths.ScratchDir }, true},
		{"no enabled profile", func(c *config.Config) {
			off := false
			c.Profiles[0].Enabled = &off
		}, true},
		{"unknown mode", func(c *config.Config) { c.Profiles[0].Mode = "stream" }, false},
		{"unknown codec", func(c *config.Config) { c.Profiles[0].Codec = "AV1" }, false},
		{"unknown resolution", func(c *config.Config) { c.Profiles[0].Resolution = "1440p" }, false},
		{"quality out of range", func(c *config.Config) { c.Profiles[0].Quality = 60 }, false},
		{"duplicate names", func(c *config.Config) {
			c.Profiles = append(c.Profiles, config.Profile{Name: "a", Mode: "rip", Codec: "H.264"})
		}, false},
		{"refresh without url", func(c *config.Config) { c.Library.Refresh = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := errors.Is(err, services.ErrConfiguration); got != tt.wantConfig {
				t.Fatalf("errors.Is(ErrConfiguration) = %v, want %v (%v)", got, tt.wantConfig, err)
			}
		})
	}
}
