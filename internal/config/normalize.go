package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeDisc()
	c.normalizeLibrary()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeRunner()
	c.normalizeProfiles()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(strings.TrimSpace(c.Paths.ScratchDir)); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.DestinationDir, err = expandPath(strings.TrimSpace(c.Paths.DestinationDir)); err != nil {
		return fmt.Errorf("paths.destination_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeTools trims tool names and expands paths that point at files.
// Bare executable names are left for PATH lookup.
func (c *Config) normalizeTools() {
	for _, field := range []*string{&c.Tools.Ripper, &c.Tools.Encoder, &c.Tools.ISOBuilder} {
		value := strings.TrimSpace(*field)
		if strings.ContainsAny(value, `/\`) || strings.HasPrefix(value, "~") {
			if expanded, err := expandPath(value); err == nil {
				value = expanded
			}
		}
		*field = value
	}
}

func (c *Config) normalizeDisc() {
	c.Disc.DriveID = strings.TrimSpace(c.Disc.DriveID)
	if c.Disc.DriveID == "" {
		c.Disc.DriveID = defaultDriveID
	}
	c.Disc.Device = strings.TrimSpace(c.Disc.Device)
	if c.Disc.InventoryTimeout <= 0 {
		c.Disc.InventoryTimeout = defaultInventoryTimeout
	}
}

func (c *Config) normalizeLibrary() {
	c.Library.URL = strings.TrimRight(strings.TrimSpace(c.Library.URL), "/")
	c.Library.APIKey = strings.TrimSpace(c.Library.APIKey)
	if c.Library.APIKey == "" {
		if value, ok := os.LookupEnv("RIPLINE_JELLYFIN_API_KEY"); ok {
			c.Library.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("RIPLINE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeRunner() {
	if c.Runner.PollIntervalMS <= 0 {
		c.Runner.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Runner.LogBucketPercent <= 0 {
		c.Runner.LogBucketPercent = defaultLogBucketPercent
	}
}

func (c *Config) normalizeProfiles() {
	if len(c.Profiles) == 0 {
		c.Profiles = DefaultProfiles()
	}
	for i := range c.Profiles {
		p := &c.Profiles[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Mode = strings.ToLower(strings.TrimSpace(p.Mode))
		p.Codec = strings.ToUpper(strings.TrimSpace(p.Codec))
		if p.Codec == "" {
			p.Codec = defaultProfileCodec
		}
		p.Resolution = strings.ToLower(strings.TrimSpace(p.Resolution))
		p.ExtraEncoderArgs = strings.TrimSpace(p.ExtraEncoderArgs)
	}
}
