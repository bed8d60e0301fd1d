package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ripline/internal/config"
	"ripline/internal/history"
	"ripline/internal/logging"
	"ripline/internal/notifications"
	"ripline/internal/procsup"
	"ripline/internal/profile"
	"ripline/internal/progressui"
	"ripline/internal/runner"
	"ripline/internal/services/jellyfin"
	"ripline/internal/staging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// session bundles the collaborators one command invocation needs.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	supervisor *procsup.Supervisor
	notifier   notifications.Service
	library    jellyfin.Service
	history    *history.Store
	prompter   *terminalPrompter
	out        io.Writer
	errOut     io.Writer

	// interactive is set when stdin is a terminal.
	interactive bool
	lock        *flock.Flock
}

// openSession loads config, builds the logger and, when exclusive is set,
// takes the single-instance lock.
func (c *commandContext) openSession(cmd *cobra.Command, exclusive bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s := &session{
		cfg:        cfg,
		logger:     logger,
		supervisor: procsup.New(logger),
		notifier:   notifications.NewService(cfg),
		library:    jellyfin.NewConfiguredService(cfg),
		prompter:   newTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		s.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	if exclusive {
		lock, err := acquireLock(cfg.LockPath())
		if err != nil {
			return nil, err
		}
		s.lock = lock
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the history database if its schema is outdated"),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
	} else {
		s.history = store
	}
	return s, nil
}

func (s *session) Close() {
	if s.history != nil {
		_ = s.history.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release lock", logging.Error(err))
		}
	}
}

// tools are the executables whose presence blocks scratch deletion.
func (s *session) tools() []string {
	return []string{s.cfg.Tools.Ripper, s.cfg.Tools.Encoder, s.cfg.Tools.ISOBuilder}
}

func (s *session) lifecycle(deleteOnSuccess bool) *staging.Lifecycle {
	return staging.NewLifecycle(s.supervisor, s.tools(), deleteOnSuccess, s.logger)
}

func (s *session) runner() *runner.Runner {
	return runner.New(progressui.ForStderr(s.logger), s.logger,
		runner.WithPollInterval(s.cfg.PollInterval()),
		runner.WithLogBucket(s.cfg.Runner.LogBucketPercent),
	)
}

// signalContext cancels on SIGINT and SIGTERM. Tools run in their own
// process group, so an interrupt stops the observation and not the tool.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// chooser returns the profile menu, or nil when nobody can answer it.
func (s *session) chooser() profile.Chooser {
	if !s.interactive {
		return nil
	}
	return s.prompter
}

func (s *session) resolver() *profile.Resolver {
	return profile.NewResolver(s.cfg, s.supervisor, s.chooser(), s.logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
