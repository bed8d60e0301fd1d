package pipeline

import (
	"context"

	"ripline/internal/config"
	"ripline/internal/logging"
	"ripline/internal/notifications"
	"ripline/internal/staging"
)

// RecoveryJob describes the publish-only job used to finish an aborted rip.
func RecoveryJob(cfg *config.Config) (Job, error) {
	return NewJob(cfg, config.Profile{Name: "Complete aborted rip", Mode: RipOnly.String()})
}

// Recover publishes the largest video left in scratch by an interrupted rip
// and removes it from scratch afterwards. It refuses to delete while a
// tracked tool still runs, so the copy is kept in that case.
func (o *Orchestrator) Recover(ctx context.Context, job Job) (Result, error) {
	logger := logging.WithContext(ctx, o.logger).With(logging.String("mode", "recover"))
	s := &session{
		o:         o,
		job:       job,
		logger:    logger,
		lifecycle: staging.NewLifecycle(o.finder, job.Tools(), job.DeleteScratch, o.logger),
	}

	candidate, _, err := staging.SelectCandidate(ctx, logger, job.ScratchDir, staging.VideoExtensions)
	if err != nil {
		return s.result, err
	}
	title := s.deriveTitle(ctx, candidate.Path)
	if err := s.publish(ctx, candidate.Path, title); err != nil {
		return s.result, err
	}
	s.lifecycle.RemoveFile(ctx, candidate.Path, true)

	if err := o.library.Refresh(ctx); err != nil {
		logging.WarnWithContext(logger, "library refresh failed", "library_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check library.url and library.api_key"),
		)
	}
	if err := o.notifier.Publish(ctx, notifications.EventAbortedRipCompleted, notifications.Payload{
		"title": title,
		"file":  s.result.Outputs[0],
	}); err != nil {
		logging.WarnWithContext(logger, "recovery notification failed", "notification_failed", logging.Error(err))
	}
	logger.Info("aborted rip completed",
		logging.String(logging.FieldEventType, "aborted_rip_completed"),
		logging.String("title", title),
	)
	return s.result, nil
}
