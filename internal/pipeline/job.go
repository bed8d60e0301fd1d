package pipeline

import (
	"fmt"
	"strings"

	"ripline/internal/config"
	"ripline/internal/language"
	"ripline/internal/services"
)

// Mode selects the tool sequence of a job.
type Mode int

const (
	RipOnly Mode = iota
	RipAndEncode
	EncodeOnly
	BackupISO
)

var modeNames = map[Mode]string{
	RipOnly:      "rip",
	RipAndEncode: "rip_encode",
	EncodeOnly:   "encode",
	BackupISO:    "backup_iso",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// RipsDisc reports whether the mode reads the disc and therefore needs media.
func (m Mode) RipsDisc() bool {
	return m == RipOnly || m == RipAndEncode || m == BackupISO
}

// Encodes reports whether the mode runs the encoder.
func (m Mode) Encodes() bool {
	return m == RipAndEncode || m == EncodeOnly
}

// ParseMode accepts the config names ("rip_encode") and the numeric forms
// ("1").
func ParseMode(value string) (Mode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for mode, name := range modeNames {
		if value == name || value == fmt.Sprint(int(mode)) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", value)
}

// Job is the immutable descriptor of one run.
type Job struct {
	Profile          string
	Mode             Mode
	Codec            string
	Resolution       string
	Quality          int
	MinTitleLength   int
	ForeignAudio     bool
	Greyscale        bool
	NativeLanguage   string
	ExtraEncoderArgs string

	ScratchDir     string
	DestinationDir string
	Subfolder      bool
	DeleteScratch  bool

	DriveID          string
	Device           string
	Eject            bool
	InventoryTimeout int

	Ripper     string
	Encoder    string
	ISOBuilder string

	// TitleOverride replaces the disc title reported by the ripper.
	TitleOverride string
}

// NewJob resolves profile against cfg.
func NewJob(cfg *config.Config, profile config.Profile) (Job, error) {
	if cfg == nil {
		return Job{}, services.Wrap(services.ErrConfiguration, "job", "build", "configuration missing", nil)
	}
	mode, err := ParseMode(profile.Mode)
	if err != nil {
		return Job{}, fmt.Errorf("profile %q: %w", profile.Name, err)
	}
	lang, ok := language.ParseNative(cfg.Output.NativeLanguage)
	if !ok {
		return Job{}, services.Wrap(services.ErrConfiguration, "job", "build",
			fmt.Sprintf("output.native_language %q is not a known language", cfg.Output.NativeLanguage), nil)
	}
	return Job{
		Profile:          profile.Name,
		Mode:             mode,
		Codec:            profile.Codec,
		Resolution:       profile.Resolution,
		Quality:          profile.Quality,
		MinTitleLength:   profile.MinTitleLength,
		ForeignAudio:     profile.ForeignAudio,
		Greyscale:        profile.Greyscale,
		NativeLanguage:   lang,
		ExtraEncoderArgs: profile.ExtraEncoderArgs,
		ScratchDir:       cfg.Paths.ScratchDir,
		DestinationDir:   cfg.Paths.DestinationDir,
		Subfolder:        cfg.Output.Subfolder,
		DeleteScratch:    cfg.Output.DeleteScratch,
		DriveID:          cfg.Disc.DriveID,
		Device:           cfg.Disc.Device,
		Eject:            cfg.Disc.Eject,
		InventoryTimeout: cfg.Disc.InventoryTimeout,
		Ripper:           cfg.Tools.Ripper,
		Encoder:          cfg.Tools.Encoder,
		ISOBuilder:       cfg.Tools.ISOBuilder,
	}, nil
}

// WithMode returns a copy of the job running mode instead.
func (j Job) WithMode(mode Mode) Job {
	j.Mode = mode
	return j
}

// WithTitle returns a copy of the job using title in place of the disc title.
func (j Job) WithTitle(title string) Job {
	j.TitleOverride = strings.TrimSpace(title)
	return j
}

// Tools lists the executables whose presence blocks scratch deletion.
func (j Job) Tools() []string {
	return []string{j.Ripper, j.Encoder, j.ISOBuilder}
}
