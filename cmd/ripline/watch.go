package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ripline/internal/disc"
	"ripline/internal/logging"
	"ripline/internal/profile"
	"ripline/internal/services"
)

const (
	readyPolls    = 30
	readyInterval = time.Second
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a profile whenever a disc is inserted (Linux)",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			if strings.TrimSpace(profileName) == "" {
				return services.Wrap(services.ErrConfiguration, "watch", "", "--profile is required", nil)
			}
			s, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			req := profile.Request{Profile: profileName}
			if _, err := s.resolver().Resolve(runCtx, req); err != nil {
				return err
			}

			handler := func(ctx context.Context, device string) error {
				status, err := disc.WaitForReady(ctx, device, readyPolls, readyInterval)
				if err != nil {
					return fmt.Errorf("wait for %s: %w", device, err)
				}
				if status != disc.DriveStatusDiscOK {
					return fmt.Errorf("drive %s not ready: %s", device, status)
				}
				action, err := s.resolver().Resolve(ctx, req)
				if err != nil {
					return s.report(ctx, profileName, err)
				}
				return s.dispatch(ctx, action)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for discs; profile %q. Press Ctrl+C to stop.\n", s.cfg.Disc.Device, profileName)
			if err := disc.NewWatcher(s.cfg.Disc.Device, handler, s.logger).Run(runCtx); err != nil {
				logging.ErrorWithContext(s.logger, "disc watcher failed", "disc_watch_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check disc.device and udev permissions"),
				)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile to run for each inserted disc")
	return cmd
}
