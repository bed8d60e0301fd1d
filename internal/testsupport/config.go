package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ripline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.DestinationDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Disc.Eject = false
	cfgVal.Runner.PollIntervalMS = 20
	cfgVal.Profiles = config.DefaultProfiles()
	for i := range cfgVal.Profiles {
		if cfgVal.Profiles[i].Codec == "" {
			cfgVal.Profiles[i].Codec = "H.265"
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.ScratchDir, cfgVal.Paths.DestinationDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithDeleteScratch toggles delete-on-success.
func WithDeleteScratch(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.DeleteScratch = enabled
	}
}

// WithSubfolder toggles the per-title destination subfolder.
func WithSubfolder(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Subfolder = enabled
	}
}

// WithProfiles replaces the configured profiles.
func WithProfiles(profiles ...config.Profile) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Profiles = profiles
	}
}

// WithTools points the tool entries at the given executables.
func WithTools(ripper, encoder, isoBuilder string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.Ripper = ripper
		b.cfg.Tools.Encoder = encoder
		b.cfg.Tools.ISOBuilder = isoBuilder
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"makemkvcon", "HandBrakeCLI", "mkisofs"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ScratchDir)
}
