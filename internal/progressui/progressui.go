package progressui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"ripline/internal/logging"
)

// Display is one progress UI lifecycle. Close must be safe to call once the
// display is no longer needed; Update after Close is ignored.
type Display interface {
	Update(percent float64, status string)
	Close()
}

// Sink opens displays.
type Sink interface {
	Open(header string) Display
}

// ForStderr returns a terminal sink when stderr is a terminal and a log sink
// otherwise.
func ForStderr(logger *slog.Logger) Sink {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewTerminal(os.Stderr)
	}
	return NewLog(logger)
}

// Terminal draws a progress bar.
type Terminal struct {
	w io.Writer
}

// NewTerminal returns a sink that draws on w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Open starts a new bar titled with header.
func (t *Terminal) Open(header string) Display {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionSetDescription(header),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(t.w) }),
	)
	return &terminalDisplay{bar: bar, header: header}
}

type terminalDisplay struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	header string
	closed bool
}

func (d *terminalDisplay) Update(percent float64, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if status != "" {
		d.bar.Describe(d.header + " - " + status)
	}
	_ = d.bar.Set(barValue(percent))
}

func (d *terminalDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	_ = d.bar.Finish()
}

// barValue maps a tool percent onto the bar's 0..100 range. Tools may report
// values past 100; the bar simply stays full.
func barValue(percent float64) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return int(percent)
	}
}

// Log writes progress as structured debug lines.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a sink backed by logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.NewComponentLogger(logger, "progress")}
}

// Open logs the header and returns a display that logs status changes.
func (l *Log) Open(header string) Display {
	l.logger.Debug("progress opened", logging.String("header", header))
	return &logDisplay{logger: l.logger.With(logging.String("header", header)), opened: time.Now()}
}

type logDisplay struct {
	mu     sync.Mutex
	logger *slog.Logger
	opened time.Time
	closed bool
}

func (d *logDisplay) Update(percent float64, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.logger.Debug("progress", logging.Float64("percent", percent), logging.String("status", status))
}

func (d *logDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.logger.Debug("progress closed", logging.Duration("elapsed", time.Since(d.opened).Round(time.Second)))
}

// Nop discards all progress.
type Nop struct{}

// Open returns a display that does nothing.
func (Nop) Open(string) Display { return nopDisplay{} }

type nopDisplay struct{}

func (nopDisplay) Update(float64, string) {}

func (nopDisplay) Close() {}
