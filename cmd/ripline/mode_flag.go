package main

import (
	"strings"

	"github.com/spf13/pflag"

	"ripline/internal/config"
	"ripline/internal/pipeline"
)

// modeFlag records an optional mode override.
type modeFlag struct {
	mode *pipeline.Mode
}

var _ pflag.Value = (*modeFlag)(nil)

func (f *modeFlag) String() string {
	if f.mode == nil {
		return ""
	}
	return f.mode.String()
}

func (f *modeFlag) Set(value string) error {
	mode, err := pipeline.ParseMode(value)
	if err != nil {
		return err
	}
	f.mode = &mode
	return nil
}

func (f *modeFlag) Type() string {
	return "mode"
}

func (f *modeFlag) usage() string {
	return "Override the profile's mode (" + strings.Join(config.ProfileModes, ", ") + ")"
}
