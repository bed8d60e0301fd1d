package disc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pilebones/go-udev/netlink"

	"ripline/internal/logging"
)

// Watcher listens for udev netlink events and calls its handler when media
// is inserted into the configured drive.
type Watcher struct {
	device  string
	handler InsertHandler
	logger  *slog.Logger
}

// NewWatcher returns a watcher for device ("/dev/sr0").
func NewWatcher(device string, handler InsertHandler, logger *slog.Logger) *Watcher {
	return &Watcher{
		device:  strings.TrimSpace(device),
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "disc-watcher"),
	}
}

// Run blocks until ctx is cancelled. Handler errors are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	if w.device == "" {
		return fmt.Errorf("disc watcher: no device configured (set disc.device)")
	}
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect to udev netlink socket: %w", err)
	}
	defer conn.Close()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())
	defer close(monitorQuit)

	w.logger.Info("watching for disc insertions",
		logging.String(logging.FieldEventType, "disc_watch_started"),
		logging.String("device", w.device),
	)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("disc watcher stopped", logging.String(logging.FieldEventType, "disc_watch_stopped"))
			return nil
		case uevent := <-queue:
			w.handleEvent(ctx, uevent)
		case err := <-errs:
			w.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "disc detection may be affected"),
			)
		}
	}
}

// buildMatcher matches SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1 with
// ACTION change or add.
func buildMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":      "block",
			"ID_CDROM":       "1",
			"ID_CDROM_MEDIA": "1",
		},
	})
	return rules
}

func (w *Watcher) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := extractDeviceName(uevent)
	if devname == "" {
		w.logger.Debug("ignoring event without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}
	if devname != w.device {
		w.logger.Debug("ignoring event for other device",
			logging.String("device", devname),
			logging.String("configured_device", w.device),
		)
		return
	}

	w.logger.Info("disc inserted",
		logging.String(logging.FieldEventType, "disc_inserted"),
		logging.String("device", devname),
		logging.String("action", string(uevent.Action)),
	)
	if w.handler == nil {
		return
	}
	if err := w.handler(ctx, devname); err != nil {
		w.logger.Warn("disc insertion handler failed",
			logging.Error(err),
			logging.String("device", devname),
			logging.String(logging.FieldEventType, "disc_handler_failed"),
			logging.String(logging.FieldErrorHint, "see the run log above for details"),
			logging.String(logging.FieldImpact, "disc not processed"),
		)
	}
}

// extractDeviceName reads DEVNAME, falling back to the last DEVPATH element.
func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
