package staging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ripline/internal/logging"
	"ripline/internal/procsup"
)

// ProcessFinder reports whether any of the executables is running.
type ProcessFinder interface {
	FindAny(ctx context.Context, executables ...string) (procsup.Handle, bool)
}

// Lifecycle deletes scratch content, but never while one of the tracked
// tools is running.
type Lifecycle struct {
	finder          ProcessFinder
	tools           []string
	deleteOnSuccess bool
	logger          *slog.Logger
}

// NewLifecycle guards deletions with finder. tools are the ripper, encoder
// and ISO builder executables. deleteOnSuccess enables unforced RemoveFile.
func NewLifecycle(finder ProcessFinder, tools []string, deleteOnSuccess bool, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		finder:          finder,
		tools:           tools,
		deleteOnSuccess: deleteOnSuccess,
		logger:          logging.NewComponentLogger(logger, "staging"),
	}
}

// Clear removes everything inside dir, keeping dir itself. It refuses and
// returns false while a tracked tool is running, even when force is set.
func (l *Lifecycle) Clear(ctx context.Context, dir string, force bool) bool {
	logger := logging.WithContext(ctx, l.logger).With(logging.String("path", dir), logging.Bool("forced", force))
	if l.busy(ctx, logger) {
		return false
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true
		}
		logging.WarnWithContext(logger, "failed to read scratch directory", "scratch_clear_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
		)
		return false
	}
	ok := true
	removed := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			ok = false
			logger.Warn("failed to remove scratch entry",
				logging.String("entry", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "scratch_clear_failed"),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		removed++
	}
	logger.Info("cleared scratch directory",
		logging.Int("removed", removed),
		logging.String(logging.FieldEventType, "scratch_cleared"),
	)
	return ok
}

// RemoveFile deletes a single staged file. Without force it only acts when
// delete-on-success is enabled. Directories are removed recursively.
func (l *Lifecycle) RemoveFile(ctx context.Context, path string, force bool) bool {
	logger := logging.WithContext(ctx, l.logger).With(logging.String("path", path))
	if l.busy(ctx, logger) {
		return false
	}
	if !force && !l.deleteOnSuccess {
		logger.Debug("keeping staged file; delete_scratch is off")
		return false
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("failed to remove staged file",
			logging.Error(err),
			logging.String(logging.FieldEventType, "staging_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove it manually or run 'ripline clean'"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return false
	}
	logger.Info("removed staged file", logging.String(logging.FieldEventType, "staging_cleanup"))
	return true
}

func (l *Lifecycle) busy(ctx context.Context, logger *slog.Logger) bool {
	if l.finder == nil {
		return false
	}
	h, running := l.finder.FindAny(ctx, l.tools...)
	if !running {
		return false
	}
	logger.Warn("refusing to delete scratch content while a tool is running",
		logging.String("executable", h.Name),
		logging.Int("pid", h.PID),
		logging.String(logging.FieldEventType, "scratch_delete_refused"),
		logging.String(logging.FieldErrorHint, "wait for the tool to finish or run 'ripline kill'"),
		logging.String(logging.FieldImpact, "scratch content kept"),
	)
	return true
}

// Entry describes a top-level item in the scratch directory.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	ModTime time.Time
	Size    int64
}

// ListEntries returns the top-level items of dir with their sizes. A missing
// directory yields no entries.
func ListEntries(dir string) ([]Entry, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		size := info.Size()
		if entry.IsDir() {
			size, _ = dirSize(path)
		}
		out = append(out, Entry{
			Name:    entry.Name(),
			Path:    path,
			IsDir:   entry.IsDir(),
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return out, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
