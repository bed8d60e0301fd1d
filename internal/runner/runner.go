package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ripline/internal/logging"
	"ripline/internal/progress"
	"ripline/internal/progressui"
	"ripline/internal/services"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	maxLineBytes        = 1 << 20
)

// State distinguishes a finished tool from one still running when the caller
// stopped watching.
type State int

const (
	Exited State = iota
	StillRunningAtCancellation
)

func (s State) String() string {
	switch s {
	case Exited:
		return "exited"
	case StillRunningAtCancellation:
		return "still_running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Command describes one tool invocation. Args are passed to the process as-is;
// no shell is involved.
type Command struct {
	Binary string
	Args   []string
	// Header titles the progress display.
	Header string
}

// Outcome reports how the tool invocation ended.
type Outcome struct {
	State       State
	ExitCode    int
	PID         int
	LastMessage string
}

// Option configures a Runner.
type Option func(*Runner)

// WithPollInterval bounds how long the loop waits for output before it
// re-checks for cancellation.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithLogBucket sets the percent width used to sample progress log lines.
func WithLogBucket(percent float64) Option {
	return func(r *Runner) {
		r.bucket = percent
	}
}

// Runner executes external tools one at a time.
type Runner struct {
	sink   progressui.Sink
	logger *slog.Logger
	poll   time.Duration
	bucket float64
	now    func() time.Time
}

// New constructs a Runner that reports progress to sink.
func New(sink progressui.Sink, logger *slog.Logger, opts ...Option) *Runner {
	if sink == nil {
		sink = progressui.Nop{}
	}
	r := &Runner{
		sink:   sink,
		logger: logging.NewComponentLogger(logger, "runner"),
		poll:   defaultPollInterval,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the command and observes it. It returns services.ErrMediumError
// when the ripper reports a medium or hardware error, after the child has
// been killed and the display closed. A cancelled ctx yields an Outcome with
// State StillRunningAtCancellation and a nil error.
func (r *Runner) Run(ctx context.Context, cmd Command) (Outcome, error) {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("tool", filepath.Base(cmd.Binary)))
	stage, _ := services.StageFromContext(ctx)

	display := r.sink.Open(cmd.Header)
	closeDisplay := sync.OnceFunc(display.Close)
	defer closeDisplay()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return Outcome{}, fmt.Errorf("create output pipe: %w", err)
	}
	child := exec.Command(cmd.Binary, cmd.Args...) //nolint:gosec
	child.Stdout = pw
	child.Stderr = pw
	child.SysProcAttr = detachedProcAttr()

	logger.Info("tool started",
		logging.String(logging.FieldEventType, "tool_start"),
		logging.String("command", commandLine(cmd)),
	)
	if err := child.Start(); err != nil {
		pr.Close()
		pw.Close()
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "start "+filepath.Base(cmd.Binary), "", err)
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	pw.Close()
	pid := child.Process.Pid

	lines := make(chan string, 64)
	stop := make(chan struct{})
	go readLines(pr, lines, stop)

	parser := progress.NewParser(r.now())
	sampler := logging.NewProgressSampler(r.bucket)
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	var waitCh chan error
	for {
		select {
		case <-ctx.Done():
			return r.detach(logger, child, stop, waitCh != nil, parser.State()), nil
		default:
		}

		select {
		case <-ctx.Done():
			return r.detach(logger, child, stop, waitCh != nil, parser.State()), nil
		case <-ticker.C:
		case line, ok := <-lines:
			if !ok {
				lines = nil
				waitCh = make(chan error, 1)
				go func() { waitCh <- child.Wait() }()
				continue
			}
			update, changed := parser.Feed(line)
			if !changed {
				continue
			}
			if update.Message != "" {
				logger.Debug("tool message", logging.String("message", update.Message))
			}
			if update.Fatal {
				return r.abortFatal(ctx, logger, child, stop, closeDisplay, parser.State())
			}
			if update.Changed() {
				r.report(logger, display, sampler, parser.State())
			}
		case err := <-waitCh:
			return r.exited(logger, err, pid, parser.State())
		}
	}
}

func (r *Runner) report(logger *slog.Logger, display progressui.Display, sampler *logging.ProgressSampler, state progress.State) {
	status := state.Phase
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "tool_progress"),
		logging.String("phase", state.Phase),
		logging.Float64("percent", state.Percent),
	}
	if state.Percent > 0 && state.Phase == progress.PhaseEncoding {
		remaining := Remaining(r.now().Sub(state.StartedAt), state.Percent)
		status = fmt.Sprintf("%s, %s remaining", state.Phase, remaining)
		attrs = append(attrs, logging.Duration("remaining", remaining))
	}
	display.Update(state.Percent, status)
	if sampler.ShouldLog(state.Percent, state.Phase) {
		logger.Info("tool progress", logging.Args(attrs...)...)
	}
}

// Remaining extrapolates the time left from the elapsed time and percent done.
func Remaining(elapsed time.Duration, percent float64) time.Duration {
	if percent <= 0 {
		return 0
	}
	remaining := time.Duration(float64(elapsed) * (100/percent - 1))
	if remaining < 0 {
		return 0
	}
	return remaining.Round(time.Second)
}

func (r *Runner) detach(logger *slog.Logger, child *exec.Cmd, stop chan struct{}, waiting bool, state progress.State) Outcome {
	close(stop)
	if !waiting {
		_ = child.Process.Release()
	}
	logger.Info("stopped watching tool; it keeps running in the background",
		logging.String(logging.FieldEventType, "tool_backgrounded"),
		logging.Int("pid", child.Process.Pid),
		logging.String("phase", state.Phase),
		logging.Float64("percent", state.Percent),
	)
	return Outcome{State: StillRunningAtCancellation, PID: child.Process.Pid, LastMessage: state.LastMessage}
}

func (r *Runner) abortFatal(ctx context.Context, logger *slog.Logger, child *exec.Cmd, stop chan struct{}, closeDisplay func(), state progress.State) (Outcome, error) {
	pid := child.Process.Pid
	if err := child.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("failed to kill tool after medium error",
			logging.Error(err),
			logging.String(logging.FieldEventType, "tool_kill_failed"),
			logging.String(logging.FieldErrorHint, "stop the ripper manually with 'ripline kill'"),
			logging.String(logging.FieldImpact, "the drive may stay busy"),
		)
	}
	close(stop)
	go func() { _ = child.Wait() }()
	closeDisplay()

	stage, _ := services.StageFromContext(ctx)
	logging.ErrorWithContext(logger, "tool reported a medium or hardware error", "tool_medium_error",
		logging.Int("pid", pid),
		logging.String("last_message", state.LastMessage),
		logging.String(logging.FieldErrorHint, "clean the disc or check the drive, then retry"),
	)
	failure := &services.ToolFailure{Tool: filepath.Base(child.Path), ExitCode: -1, LastMessage: state.LastMessage}
	return Outcome{State: Exited, ExitCode: -1, PID: pid, LastMessage: state.LastMessage},
		services.Wrap(services.ErrMediumError, stage, "read disc", "", failure)
}

func (r *Runner) exited(logger *slog.Logger, waitErr error, pid int, state progress.State) (Outcome, error) {
	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Outcome{}, fmt.Errorf("wait for tool: %w", waitErr)
		}
		code = exitErr.ExitCode()
	}
	logger.Info("tool exited",
		logging.String(logging.FieldEventType, "tool_exit"),
		logging.Int("exit_code", code),
		logging.String("last_message", state.LastMessage),
	)
	return Outcome{State: Exited, ExitCode: code, PID: pid, LastMessage: state.LastMessage}, nil
}

// readLines splits r on '\n' or '\r' and forwards each line until EOF or
// until stop is closed. Whatever remains unread is drained so the child
// never blocks on a full pipe.
func readLines(r io.ReadCloser, lines chan<- string, stop <-chan struct{}) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(scanLinesOrCarriageReturns)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			_, _ = io.Copy(io.Discard, r)
			return
		}
	}
	_, _ = io.Copy(io.Discard, r)
	select {
	case <-stop:
	default:
		close(lines)
	}
}

// scanLinesOrCarriageReturns is a bufio.SplitFunc that treats "\r", "\n" and
// "\r\n" as line terminators. The encoder redraws its status line with bare
// carriage returns.
func scanLinesOrCarriageReturns(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					advance++
				}
			} else if !atEOF {
				// A '\n' may follow in the next read.
				return 0, nil, nil
			}
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func commandLine(cmd Command) string {
	parts := make([]string, 0, len(cmd.Args)+1)
	parts = append(parts, cmd.Binary)
	for _, arg := range cmd.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
