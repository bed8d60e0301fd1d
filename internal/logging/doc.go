// Package logging assembles structured slog loggers and formatting helpers used
// across ripline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with the run id, stage, and profile. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
