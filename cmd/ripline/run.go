package main

import (
	"context"

	"github.com/spf13/cobra"

	"ripline/internal/logging"
	"ripline/internal/preflight"
	"ripline/internal/profile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var profileName string
	var title string
	var assumeYes bool
	mode := &modeFlag{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a profile, or choose one from the menu",
		Long: `Run resolves a profile and executes it.

Without --profile an interactive menu lists the enabled profiles, followed
by maintenance entries. While makemkvcon or HandBrakeCLI is running the menu
only offers to stop them.

Interrupting a run (Ctrl+C) stops watching the current tool; the tool keeps
running in the background and scratch is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			s, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			s.prompter.assumeYes = assumeYes

			s.logPreflight(runCtx)

			action, err := s.resolver().Resolve(runCtx, profile.Request{
				Profile: profileName,
				Mode:    mode.mode,
				Title:   title,
			})
			if err != nil {
				return s.report(runCtx, profileName, err)
			}
			return s.dispatch(runCtx, action)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile name to run without showing the menu")
	cmd.Flags().Var(mode, "mode", mode.usage())
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title to use for generically named files")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Process every eligible file without asking")
	return cmd
}

// logPreflight logs failed checks as warnings. Runs continue regardless.
func (s *session) logPreflight(ctx context.Context) {
	for _, r := range preflight.RunAll(ctx, s.cfg) {
		switch {
		case !r.Passed:
			logging.WarnWithContext(s.logger, "preflight check failed", "preflight_failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldImpact, "the run may fail"),
			)
		case r.Warning:
			s.logger.Warn("preflight warning",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_warning"),
			)
		}
	}
}
