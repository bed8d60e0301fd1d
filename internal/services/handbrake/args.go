package handbrake

import (
	"strconv"
	"strings"
)

// Preset containers are fixed; the codec picks between the H.264 and H.265
// variants.
const presetSuffix = " MKV 2160p60"

// allAudioTracks selects up to ten audio tracks so foreign dubs survive.
const allAudioTracks = "1,2,3,4,5,6,7,8,9,10"

var maxDimensions = map[string][2]int{
	"2160p": {3840, 2160},
	"1080p": {1920, 1080},
	"720p":  {1280, 720},
	"576p":  {720, 576},
	"480p":  {720, 480},
}

// Options describes one encode.
type Options struct {
	Source       string
	Output       string
	Language     string // ISO 639-2 code, passed as -N
	Codec        string
	Quality      int
	Resolution   string
	ForeignAudio bool
	Greyscale    bool
	ExtraArgs    string
}

// Args returns the encoder argv. Zero quality keeps the preset's value and an
// empty resolution leaves the preset's dimensions alone.
func Args(opts Options) []string {
	args := []string{
		"-i", opts.Source,
		"-o", opts.Output,
		"-f", "mkv",
		"--decomb", "fast",
		"-N", opts.Language,
		"--native-dub",
		"-m",
		"-Z", opts.Codec + presetSuffix,
		"-s", "1",
	}
	if opts.ForeignAudio {
		args = append(args, "-a", allAudioTracks)
	}
	if opts.Quality > 0 {
		args = append(args, "-q", strconv.Itoa(opts.Quality))
	}
	if opts.Greyscale {
		args = append(args, "--greyscale")
	}
	if dims, ok := maxDimensions[strings.ToLower(opts.Resolution)]; ok {
		args = append(args, "--maxWidth", strconv.Itoa(dims[0]), "--maxHeight", strconv.Itoa(dims[1]))
	}
	return append(args, strings.Fields(opts.ExtraArgs)...)
}
