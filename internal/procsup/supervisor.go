package procsup

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"ripline/internal/logging"
)

// Handle identifies a running process and the executable name used to find it.
type Handle struct {
	PID  int
	Name string
}

// Commander runs a process listing or kill utility and returns its stdout.
type Commander interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithCommander injects a custom command runner (primarily for tests).
func WithCommander(c Commander) Option {
	return func(s *Supervisor) {
		if c != nil {
			s.cmd = c
		}
	}
}

// WithPlatform overrides the detected GOOS (primarily for tests).
func WithPlatform(goos string) Option {
	return func(s *Supervisor) {
		s.goos = goos
	}
}

// WithKiller overrides the signal-based kill used on unix platforms.
func WithKiller(kill func(pid int) error) Option {
	return func(s *Supervisor) {
		if kill != nil {
			s.kill = kill
		}
	}
}

// Supervisor looks up and terminates processes using the host's process table.
type Supervisor struct {
	cmd    Commander
	goos   string
	kill   func(pid int) error
	logger *slog.Logger
}

// New constructs a Supervisor for the current platform.
func New(logger *slog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		cmd:    execCommander{},
		goos:   runtime.GOOS,
		kill:   killPID,
		logger: logging.NewComponentLogger(logger, "procsup"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find reports the first process whose executable name matches the basename
// of executable.
func (s *Supervisor) Find(ctx context.Context, executable string) (Handle, bool) {
	name := baseName(executable)
	if name == "" {
		return Handle{}, false
	}
	logger := logging.WithContext(ctx, s.logger)

	var (
		pid int
		ok  bool
	)
	switch s.goos {
	case "linux":
		pid, ok = s.findWithList(ctx, "pidof", name)
	case "darwin", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos", "aix":
		pid, ok = s.findWithList(ctx, "pgrep", "-x", name)
	case "windows":
		if filepath.Ext(name) == "" {
			name += ".exe"
		}
		pid, ok = s.findWindows(ctx, name)
	default:
		logger.Warn("process lookup unsupported on this platform",
			logging.String("platform", s.goos),
			logging.String("executable", name),
			logging.String(logging.FieldEventType, "process_lookup_unsupported"),
			logging.String(logging.FieldImpact, "running tools are reported as absent"),
		)
		return Handle{}, false
	}
	if !ok {
		return Handle{}, false
	}
	logger.Debug("process found", logging.String("executable", name), logging.Int("pid", pid))
	return Handle{PID: pid, Name: name}, true
}

// FindAny returns the first of the executables found running.
func (s *Supervisor) FindAny(ctx context.Context, executables ...string) (Handle, bool) {
	for _, exe := range executables {
		if h, ok := s.Find(ctx, exe); ok {
			return h, true
		}
	}
	return Handle{}, false
}

// Terminate forcefully stops the process. There is no grace period.
func (s *Supervisor) Terminate(ctx context.Context, h Handle) error {
	if h.PID <= 0 && h.Name == "" {
		return fmt.Errorf("terminate: empty process handle")
	}
	logger := logging.WithContext(ctx, s.logger)
	var err error
	if s.goos == "windows" {
		_, err = s.cmd.Output(ctx, "TASKKILL", "/F", "/IM", h.Name)
	} else {
		err = s.kill(h.PID)
	}
	if err != nil {
		return fmt.Errorf("terminate %s (pid %d): %w", h.Name, h.PID, err)
	}
	logger.Info("process terminated",
		logging.String("executable", h.Name),
		logging.Int("pid", h.PID),
		logging.String(logging.FieldEventType, "process_terminated"),
	)
	return nil
}

// findWithList runs pidof/pgrep, which print whitespace-separated PIDs and
// exit non-zero when nothing matches.
func (s *Supervisor) findWithList(ctx context.Context, name string, args ...string) (int, bool) {
	out, err := s.cmd.Output(ctx, name, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			logging.WithContext(ctx, s.logger).Debug("process listing failed",
				logging.String("command", name),
				logging.Error(err),
			)
		}
		return 0, false
	}
	for _, field := range strings.Fields(string(out)) {
		if pid, err := strconv.Atoi(field); err == nil && pid > 0 {
			return pid, true
		}
	}
	return 0, false
}

// findWindows parses TASKLIST CSV output: "image","pid","session",...
func (s *Supervisor) findWindows(ctx context.Context, name string) (int, bool) {
	out, err := s.cmd.Output(ctx, "TASKLIST", "/FI", "IMAGENAME eq "+name, "/FO", "CSV", "/NH")
	if err != nil {
		logging.WithContext(ctx, s.logger).Debug("tasklist failed", logging.Error(err))
		return 0, false
	}
	reader := csv.NewReader(strings.NewReader(string(out)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, false
	}
	for _, rec := range records {
		if len(rec) < 2 || !strings.EqualFold(strings.TrimSpace(rec[0]), name) {
			continue
		}
		if pid, err := strconv.Atoi(strings.TrimSpace(rec[1])); err == nil && pid > 0 {
			return pid, true
		}
	}
	return 0, false
}

// baseName strips directories and, for Windows-style paths, backslash
// prefixes so configured absolute tool paths match the process table.
func baseName(executable string) string {
	executable = strings.TrimSpace(executable)
	if executable == "" {
		return ""
	}
	if idx := strings.LastIndexAny(executable, `/\`); idx >= 0 {
		executable = executable[idx+1:]
	}
	return filepath.Base(executable)
}

type execCommander struct{}

func (execCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
}
