package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ripline/internal/history"
	"ripline/internal/logging"
	"ripline/internal/notifications"
	"ripline/internal/pipeline"
	"ripline/internal/profile"
	"ripline/internal/progressui"
	"ripline/internal/services"
)

// reportedError marks an error whose message was already shown to the
// operator, so main exits non-zero without printing it again.
type reportedError struct {
	kind services.Kind
	err  error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// dispatch consumes a resolved profile action.
func (s *session) dispatch(ctx context.Context, action profile.Action) error {
	switch action.Kind {
	case profile.Cancelled:
		fmt.Fprintln(s.out, "Nothing selected.")
		return nil
	case profile.RunJob:
		return s.runJob(ctx, action.Job)
	case profile.KillActiveProcesses:
		return s.killActive(ctx)
	case profile.CleanScratch:
		return s.cleanScratch(ctx)
	case profile.CompleteAbortedRip:
		return s.completeAbortedRip(ctx, "")
	default:
		return fmt.Errorf("unhandled action %s", action.Kind)
	}
}

func (s *session) orchestrator() *pipeline.Orchestrator {
	return pipeline.New(s.runner(), s.supervisor, s.logger,
		pipeline.WithLibrary(s.library),
		pipeline.WithNotifier(s.notifier),
		pipeline.WithPrompter(s.prompter),
		pipeline.WithSink(progressui.ForStderr(s.logger)),
	)
}

func (s *session) runJob(ctx context.Context, job pipeline.Job) error {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithProfile(ctx, job.Profile)

	s.recordStart(ctx, runID, job.Profile, job.Mode.String())
	s.notify(ctx, notifications.EventRunStarted, notifications.Payload{"profile": job.Profile})

	result, err := s.orchestrator().Run(ctx, job)
	s.recordFinish(ctx, runID, result, err)
	if err != nil {
		return s.report(ctx, job.Profile, err)
	}
	s.printOutputs(result)
	return nil
}

func (s *session) completeAbortedRip(ctx context.Context, title string) error {
	job, err := pipeline.RecoveryJob(s.cfg)
	if err != nil {
		return s.report(ctx, "", err)
	}
	if title != "" {
		job = job.WithTitle(title)
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithProfile(ctx, job.Profile)

	s.recordStart(ctx, runID, job.Profile, "recover")
	result, err := s.orchestrator().Recover(ctx, job)
	s.recordFinish(ctx, runID, result, err)
	if err != nil {
		return s.report(ctx, job.Profile, err)
	}
	s.printOutputs(result)
	return nil
}

func (s *session) printOutputs(result pipeline.Result) {
	for _, path := range result.Outputs {
		fmt.Fprintf(s.out, "Published %s\n", path)
	}
}

// killActive terminates every running ripline tool.
func (s *session) killActive(ctx context.Context) error {
	var stopped []string
	for _, tool := range s.tools() {
		h, ok := s.supervisor.Find(ctx, tool)
		if !ok {
			continue
		}
		if err := s.supervisor.Terminate(ctx, h); err != nil {
			logging.WarnWithContext(s.logger, "failed to stop process", "process_kill_failed",
				logging.Error(err),
				logging.String("executable", h.Name),
				logging.Int("pid", h.PID),
				logging.String(logging.FieldErrorHint, "stop the process manually"),
			)
			fmt.Fprintf(s.errOut, "Could not stop %s (pid %d): %v\n", h.Name, h.PID, err)
			continue
		}
		stopped = append(stopped, fmt.Sprintf("%s (pid %d)", h.Name, h.PID))
	}
	if len(stopped) == 0 {
		fmt.Fprintln(s.out, "No ripline tools are running.")
		return nil
	}
	list := strings.Join(stopped, ", ")
	fmt.Fprintf(s.out, "Stopped %s\n", list)
	s.logger.Info("processes stopped",
		logging.String(logging.FieldEventType, "processes_killed"),
		logging.String("processes", list),
	)
	s.notify(ctx, notifications.EventProcessesKilled, notifications.Payload{"processes": list})
	return nil
}

// cleanScratch empties the scratch directory unless a tool still runs.
func (s *session) cleanScratch(ctx context.Context) error {
	dir := s.cfg.Paths.ScratchDir
	if !s.lifecycle(true).Clear(ctx, dir, true) {
		err := fmt.Errorf("scratch directory %s was not cleared; see the log for details", dir)
		fmt.Fprintln(s.errOut, err)
		return &reportedError{kind: services.KindUnexpected, err: err}
	}
	fmt.Fprintf(s.out, "Cleared %s\n", dir)
	s.notify(ctx, notifications.EventScratchCleaned, notifications.Payload{"path": dir})
	return nil
}

// report turns a pipeline error into one message, one notification and one
// log line. A backgrounded pipeline is not a failure.
func (s *session) report(ctx context.Context, profileName string, err error) error {
	if err == nil {
		return nil
	}
	kind := services.Classify(err)
	logger := logging.WithContext(ctx, s.logger)
	message := userMessage(kind, err, s.cfg.Paths.ScratchDir)

	if errors.Is(err, context.Canceled) && kind == services.KindUnexpected {
		fmt.Fprintln(s.errOut, "Run cancelled.")
		logger.Info("run cancelled", logging.String(logging.FieldEventType, "run_cancelled"))
		return &reportedError{kind: kind, err: err}
	}

	fmt.Fprintln(s.errOut, message)

	if kind == services.KindBackgrounded {
		payload := notifications.Payload{"profile": profileName}
		attrs := []logging.Attr{logging.String(logging.FieldEventType, "run_backgrounded")}
		if bg, ok := services.BackgroundedFrom(err); ok {
			payload["tool"] = bg.Tool
			payload["pid"] = strconv.Itoa(bg.PID)
			attrs = append(attrs, logging.String("tool", bg.Tool), logging.Int("pid", bg.PID))
		}
		logger.Info("pipeline backgrounded", logging.Args(attrs...)...)
		s.notify(ctx, notifications.EventRunBackgrounded, payload)
		return nil
	}

	last := services.LastToolMessage(err)
	logging.ErrorWithContext(logger, "run failed", "run_failed",
		logging.String("error_kind", string(kind)),
		logging.Error(err),
		logging.String("last_message", last),
		logging.String(logging.FieldErrorHint, hintFor(kind)),
	)
	s.notify(ctx, notifications.EventRunFailed, notifications.Payload{
		"profile":     profileName,
		"error":       message,
		"lastMessage": last,
		"kind":        string(kind),
	})
	return &reportedError{kind: kind, err: err}
}

// userMessage renders the single operator-facing line for kind.
func userMessage(kind services.Kind, err error, scratchDir string) string {
	switch kind {
	case services.KindConfiguration:
		return fmt.Sprintf("Configuration incomplete: %v", err)
	case services.KindMediaAbsent:
		return "No disc in the drive. Insert a disc and try again."
	case services.KindExternalTool:
		msg := "External tool failed"
		var failure *services.ToolFailure
		if errors.As(err, &failure) {
			msg = fmt.Sprintf("%s failed with exit code %d", failure.Tool, failure.ExitCode)
		}
		if last := services.LastToolMessage(err); last != "" {
			msg += ": " + last
		}
		return msg
	case services.KindMediumError:
		return fmt.Sprintf("The disc or drive reported a read error and the rip was stopped: %v", err)
	case services.KindNoEligibleFiles:
		return fmt.Sprintf("No eligible files found in %s.", scratchDir)
	case services.KindCopyInterrupted:
		return fmt.Sprintf("Copying to the destination failed; the file stays in scratch: %v", err)
	case services.KindBackgrounded:
		if bg, ok := services.BackgroundedFrom(err); ok {
			return fmt.Sprintf("Stopped watching; %s (pid %d) keeps running in the background. Run 'ripline status' to check on it.", bg.Tool, bg.PID)
		}
		return "Stopped watching; the tool keeps running in the background."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func hintFor(kind services.Kind) string {
	switch kind {
	case services.KindConfiguration:
		return "run 'ripline config validate'"
	case services.KindMediaAbsent:
		return "insert a disc or check disc.drive_id"
	case services.KindExternalTool:
		return "see the tool's last message"
	case services.KindMediumError:
		return "clean the disc or try another drive"
	case services.KindNoEligibleFiles:
		return "check paths.scratch_dir"
	case services.KindCopyInterrupted:
		return "check free space and permissions of paths.destination_dir"
	default:
		return "see the log for details"
	}
}

func (s *session) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := s.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(s.logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String("event", string(event)),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func (s *session) recordStart(ctx context.Context, id, profileName, mode string) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Start(context.WithoutCancel(ctx), id, profileName, mode); err != nil {
		s.logger.Warn("failed to record run start", logging.Error(err))
	}
}

func (s *session) recordFinish(ctx context.Context, id string, result pipeline.Result, err error) {
	if s.history == nil {
		return
	}
	if err := s.history.Finish(context.WithoutCancel(ctx), id, outcomeFor(result, err)); err != nil {
		s.logger.Warn("failed to record run outcome", logging.Error(err))
	}
}

func outcomeFor(result pipeline.Result, err error) history.Outcome {
	outcome := history.Outcome{Status: history.StatusCompleted, Title: result.Title}
	if n := len(result.Outputs); n > 0 {
		outcome.OutputPath = result.Outputs[n-1]
	}
	if err == nil {
		return outcome
	}
	kind := services.Classify(err)
	switch {
	case kind == services.KindBackgrounded:
		outcome.Status = history.StatusBackgrounded
	case errors.Is(err, context.Canceled):
		outcome.Status = history.StatusCancelled
	default:
		outcome.Status = history.StatusFailed
	}
	outcome.ErrorKind = string(kind)
	outcome.ErrorMessage = err.Error()
	outcome.LastMessage = services.LastToolMessage(err)
	return outcome
}
