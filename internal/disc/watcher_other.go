//go:build !linux

package disc

import (
	"context"
	"errors"
	"log/slog"
)

// Watcher is unavailable without udev.
type Watcher struct{}

// NewWatcher returns a watcher whose Run always fails on this platform.
func NewWatcher(string, InsertHandler, *slog.Logger) *Watcher {
	return &Watcher{}
}

// Run reports that disc watching needs Linux udev.
func (*Watcher) Run(context.Context) error {
	return errors.New("disc watching requires Linux udev")
}
