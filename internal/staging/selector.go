package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ripline/internal/logging"
	"ripline/internal/services"
)

// VideoExtensions are the container formats the ripper and encoder produce.
var VideoExtensions = []string{".mkv", ".ts", ".m2ts", ".mp4", ".mpg", ".mpeg", ".avi", ".flv", ".wmv", ".264", ".mov"}

// ISOExtensions selects disc images built in backup mode.
var ISOExtensions = []string{".iso"}

// Candidate is an eligible file at the top level of the scratch directory.
type Candidate struct {
	Path string
	Size int64
}

// Ext returns the candidate's extension including the dot.
func (c Candidate) Ext() string {
	return filepath.Ext(c.Path)
}

// SelectCandidate returns the largest eligible file directly inside dir along
// with every eligible file in enumeration order. Ties keep the file seen
// first. Subdirectories are not searched.
func SelectCandidate(ctx context.Context, logger *slog.Logger, dir string, exts []string) (Candidate, []Candidate, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "staging"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Candidate{}, nil, services.Wrap(services.ErrNoEligibleFiles, "staging", "scan scratch", dir+" does not exist", nil)
		}
		return Candidate{}, nil, fmt.Errorf("read scratch dir: %w", err)
	}

	var (
		all  []Candidate
		best Candidate
	)
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidate := Candidate{Path: filepath.Join(dir, entry.Name()), Size: info.Size()}
		all = append(all, candidate)
		logger.Info("staged file",
			logging.String("file", entry.Name()),
			logging.String("size", humanize.IBytes(uint64(info.Size()))),
		)
		if !found || candidate.Size > best.Size {
			best = candidate
			found = true
		}
	}
	if !found {
		return Candidate{}, nil, services.Wrap(services.ErrNoEligibleFiles, "staging", "scan scratch", "no file in "+dir+" matches "+strings.Join(exts, " "), nil)
	}
	if len(all) > 1 {
		logger.Info("selected largest file",
			logging.String("file", filepath.Base(best.Path)),
			logging.String("size", humanize.IBytes(uint64(best.Size))),
			logging.Int("candidates", len(all)),
			logging.String(logging.FieldEventType, "candidate_selected"),
		)
	}
	return best, all, nil
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
