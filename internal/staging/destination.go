package staging

import (
	"path/filepath"
	"strings"

	"ripline/internal/textutil"
)

// Destination is where a staged file is published.
type Destination struct {
	SourcePath string
	Folder     string
	FileName   string
}

// Path joins the folder and file name.
func (d Destination) Path() string {
	return filepath.Join(d.Folder, d.FileName)
}

// ComputeDestination names the published file after title and, when
// subfolder is set, nests it in a folder of the same name under base.
func ComputeDestination(base string, subfolder bool, source, title string) Destination {
	name := textutil.SanitizeFileName(title)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	folder := base
	if subfolder {
		folder = filepath.Join(base, name)
	}
	return Destination{
		SourcePath: source,
		Folder:     folder,
		FileName:   name + filepath.Ext(source),
	}
}
