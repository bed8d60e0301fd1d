package config

const (
	defaultConfigPath             = "~/.config/ripline/config.toml"
	defaultScratchDir             = "~/.local/share/ripline/scratch"
	defaultLogDir                 = "~/.local/share/ripline/logs"
	defaultRipper                 = "makemkvcon"
	defaultEncoder                = "HandBrakeCLI"
	defaultISOBuilder             = "mkisofs"
	defaultNativeLanguage         = "English (eng)"
	defaultDriveID                = "0"
	defaultDevice                 = "/dev/sr0"
	defaultInventoryTimeout       = 120
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultPollIntervalMS         = 500
	defaultLogBucketPercent       = 5
	defaultProfileCodec           = "H.265"
	defaultProfileQuality         = 20
	defaultProfileMinTitleSeconds = 600
)

// Default returns a Config populated with repository defaults. The
// destination directory has no default and must be configured.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			Ripper:     defaultRipper,
			Encoder:    defaultEncoder,
			ISOBuilder: defaultISOBuilder,
		},
		Output: Output{
			Subfolder:      true,
			NativeLanguage: defaultNativeLanguage,
		},
		Disc: Disc{
			DriveID:          defaultDriveID,
			Device:           defaultDevice,
			InventoryTimeout: defaultInventoryTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Runner: Runner{
			PollIntervalMS:   defaultPollIntervalMS,
			LogBucketPercent: defaultLogBucketPercent,
		},
	}
}

// DefaultProfiles is used when the config file declares no profiles.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:           "Rip only",
			Mode:           "rip",
			MinTitleLength: defaultProfileMinTitleSeconds,
		},
		{
			Name:           "Rip and encode",
			Mode:           "rip_encode",
			Codec:          defaultProfileCodec,
			Resolution:     "1080p",
			Quality:        defaultProfileQuality,
			MinTitleLength: defaultProfileMinTitleSeconds,
		},
		{
			Name:    "Encode scratch",
			Mode:    "encode",
			Codec:   defaultProfileCodec,
			Quality: defaultProfileQuality,
		},
	}
}
