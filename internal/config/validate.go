package config

import (
	"errors"
	"fmt"
	"strings"

	"ripline/internal/services"
)

// ProfileModes lists the accepted values for a profile's mode key.
var ProfileModes = []string{"rip", "rip_encode", "encode", "backup_iso"}

// Resolutions lists the accepted resolution caps. An empty value disables the cap.
var Resolutions = []string{"2160p", "1080p", "720p", "576p", "480p"}

// Codecs lists the accepted encoder codecs.
var Codecs = []string{"H.264", "H.265"}

// Validate ensures the configuration is usable. Missing tool paths or a
// missing destination are reported as incomplete configuration.
func (c *Config) Validate() error {
	if err := c.validateRequired(); err != nil {
		return err
	}
	if err := c.validateDisc(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	return c.validateProfiles()
}

func (c *Config) validateRequired() error {
	required := []struct {
		key   string
		value string
	}{
		{"tools.ripper", c.Tools.Ripper},
		{"tools.encoder", c.Tools.Encoder},
		{"tools.iso_builder", c.Tools.ISOBuilder},
		{"paths.scratch_dir", c.Paths.ScratchDir},
		{"paths.destination_dir", c.Paths.DestinationDir},
	}
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("%w: %s must be set; edit %s (create with 'ripline config init')", services.ErrConfiguration, item.key, defaultPath)
		}
	}
	if c.Paths.ScratchDir == c.Paths.DestinationDir {
		return fmt.Errorf("%w: paths.scratch_dir and paths.destination_dir must differ", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateDisc() error {
	if c.Disc.InventoryTimeout <= 0 {
		return errors.New("disc.inventory_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if !c.Library.Refresh {
		return nil
	}
	if c.Library.URL == "" {
		return errors.New("library.url must be set when library.refresh is true")
	}
	if c.Library.APIKey == "" {
		return errors.New("library.api_key must be set when library.refresh is true (or set RIPLINE_JELLYFIN_API_KEY)")
	}
	return nil
}

func (c *Config) validateProfiles() error {
	if len(c.EnabledProfiles()) == 0 {
		return fmt.Errorf("%w: no profile is enabled", services.ErrConfiguration)
	}
	seen := make(map[string]struct{}, len(c.Profiles))
	for i, p := range c.Profiles {
		label := fmt.Sprintf("profiles[%d]", i)
		if p.Name == "" {
			return fmt.Errorf("%s.name must be set", label)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s.name %q is used more than once", label, p.Name)
		}
		seen[key] = struct{}{}
		if !contains(ProfileModes, p.Mode) {
			return fmt.Errorf("%s.mode %q must be one of %s", label, p.Mode, strings.Join(ProfileModes, ", "))
		}
		if !contains(Codecs, p.Codec) {
			return fmt.Errorf("%s.codec %q must be one of %s", label, p.Codec, strings.Join(Codecs, ", "))
		}
		if p.Resolution != "" && !contains(Resolutions, p.Resolution) {
			return fmt.Errorf("%s.resolution %q must be empty or one of %s", label, p.Resolution, strings.Join(Resolutions, ", "))
		}
		if p.Quality < 0 || p.Quality > 51 {
			return fmt.Errorf("%s.quality must be between 0 and 51 (0 keeps the preset default)", label)
		}
		if p.MinTitleLength < 0 {
			return fmt.Errorf("%s.min_title_length must be >= 0", label)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
