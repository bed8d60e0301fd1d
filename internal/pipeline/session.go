package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ripline/internal/disc"
	"ripline/internal/fileutil"
	"ripline/internal/logging"
	"ripline/internal/notifications"
	"ripline/internal/runner"
	"ripline/internal/services"
	"ripline/internal/services/handbrake"
	"ripline/internal/services/makemkv"
	"ripline/internal/services/mkisofs"
	"ripline/internal/staging"
	"ripline/internal/textutil"
)

// encodeDir holds encoder output inside scratch. The selector never looks
// into subdirectories, so partial encodes are not picked up as sources.
const encodeDir = ".encode"

type processAllAnswer int

const (
	processAllUnasked processAllAnswer = iota
	processAllNo
	processAllYes
)

// session is the mutable state of one Run.
type session struct {
	o         *Orchestrator
	job       Job
	logger    *slog.Logger
	lifecycle *staging.Lifecycle

	discTitle  string
	processAll processAllAnswer
	result     Result
}

func (s *session) ripOnly(ctx context.Context) error {
	if err := s.rip(ctx); err != nil {
		return err
	}
	candidate, _, err := staging.SelectCandidate(ctx, s.logger, s.job.ScratchDir, staging.VideoExtensions)
	if err != nil {
		return err
	}
	title := s.deriveTitle(ctx, candidate.Path)
	s.logger.Info("encoding not required for this profile",
		logging.String(logging.FieldEventType, "encode_skipped"),
		logging.String("source", candidate.Path),
	)
	if err := s.publish(ctx, candidate.Path, title); err != nil {
		return err
	}
	s.lifecycle.RemoveFile(ctx, candidate.Path, false)
	return nil
}

func (s *session) ripAndEncode(ctx context.Context) error {
	if err := s.rip(ctx); err != nil {
		return err
	}
	return s.encodeLoop(ctx)
}

// encodeLoop encodes the largest eligible file, publishes it and repeats
// while the operator asked for every file to be processed.
func (s *session) encodeLoop(ctx context.Context) error {
	for iteration := 0; ; iteration++ {
		candidate, all, err := staging.SelectCandidate(ctx, s.logger, s.job.ScratchDir, staging.VideoExtensions)
		if err != nil {
			if iteration > 0 && errors.Is(err, services.ErrNoEligibleFiles) {
				return nil
			}
			return err
		}
		s.askProcessAll(ctx, len(all))

		if err := s.encodeOne(ctx, candidate); err != nil {
			return err
		}
		if s.processAll != processAllYes {
			return nil
		}
		if _, err := os.Stat(candidate.Path); err == nil {
			s.logger.Warn("source still in scratch; stopping batch",
				logging.String(logging.FieldEventType, "batch_stopped"),
				logging.String("source", candidate.Path),
				logging.String(logging.FieldErrorHint, "a tracked tool may be running; remove the file manually"),
			)
			return nil
		}
	}
}

func (s *session) encodeOne(ctx context.Context, candidate staging.Candidate) error {
	title := s.deriveTitle(ctx, candidate.Path)
	output := filepath.Join(s.job.ScratchDir, encodeDir, strconv.FormatInt(time.Now().Unix(), 10)+".mkv")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create encode directory: %w", err)
	}

	args := handbrake.Args(handbrake.Options{
		Source:       candidate.Path,
		Output:       output,
		Language:     s.job.NativeLanguage,
		Codec:        s.job.Codec,
		Quality:      s.job.Quality,
		Resolution:   s.job.Resolution,
		ForeignAudio: s.job.ForeignAudio,
		Greyscale:    s.job.Greyscale,
		ExtraArgs:    s.job.ExtraEncoderArgs,
	})
	if err := s.runTool(ctx, "encode", runner.Command{Binary: s.job.Encoder, Args: args, Header: title}); err != nil {
		return err
	}

	if err := s.publish(ctx, output, title); err != nil {
		return err
	}
	s.lifecycle.RemoveFile(ctx, output, true)
	s.lifecycle.RemoveFile(ctx, candidate.Path, false)
	return nil
}

func (s *session) backupISO(ctx context.Context) error {
	if err := s.detectMedia(ctx); err != nil {
		return err
	}
	name := textutil.SanitizeToken(s.titleHint())
	backupDir := filepath.Join(s.job.ScratchDir, ".backup-"+name)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	rip := s.ripClient()
	cmd := runner.Command{Binary: s.job.Ripper, Args: rip.BackupArgs(backupDir), Header: s.titleHint()}
	if err := s.runTool(ctx, "backup", cmd); err != nil {
		return err
	}
	s.eject(ctx)

	iso := filepath.Join(s.job.ScratchDir, name+".iso")
	cmd = runner.Command{
		Binary: s.job.ISOBuilder,
		Args:   mkisofs.Args(mkisofs.VolumeLabel(s.titleHint()), iso, backupDir),
		Header: s.titleHint(),
	}
	if err := s.runTool(ctx, "iso", cmd); err != nil {
		return err
	}

	candidate, _, err := staging.SelectCandidate(ctx, s.logger, s.job.ScratchDir, staging.ISOExtensions)
	if err != nil {
		return err
	}
	title := s.deriveTitle(ctx, candidate.Path)
	if err := s.publish(ctx, candidate.Path, title); err != nil {
		return err
	}
	s.lifecycle.RemoveFile(ctx, backupDir, true)
	s.lifecycle.RemoveFile(ctx, candidate.Path, false)
	return nil
}

// rip detects media, extracts every long enough title into scratch and
// ejects the disc.
func (s *session) rip(ctx context.Context) error {
	if err := s.detectMedia(ctx); err != nil {
		return err
	}
	cmd := runner.Command{
		Binary: s.job.Ripper,
		Args:   s.ripClient().RipArgs(s.job.MinTitleLength, s.job.ScratchDir),
		Header: s.titleHint(),
	}
	if err := s.runTool(ctx, "rip", cmd); err != nil {
		return err
	}
	s.eject(ctx)
	return nil
}

func (s *session) ripClient() *makemkv.Client {
	// New only fails on an empty binary, which config validation rejects.
	client, _ := makemkv.New(s.job.Ripper, s.job.DriveID, s.job.InventoryTimeout)
	return client
}

func (s *session) detectMedia(ctx context.Context) error {
	client, err := makemkv.New(s.job.Ripper, s.job.DriveID, s.job.InventoryTimeout)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "detect", "makemkv", "", err)
	}
	drive, ok, err := client.Inventory(ctx)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "detect", "inventory", "", err)
	}
	if !ok {
		return services.Wrap(services.ErrMediaAbsent, "detect", "inventory",
			fmt.Sprintf("no disc in drive %s", s.job.DriveID), nil)
	}
	s.discTitle = drive.DiscTitle
	s.result.DiscTitle = drive.DiscTitle
	s.logger.Info("media detected",
		logging.String(logging.FieldEventType, "media_detected"),
		logging.String("disc_title", drive.DiscTitle),
		logging.String("device", drive.DevicePath),
		logging.Int("drive_index", drive.Index),
	)
	return nil
}

// titleHint is the best title known before a file was selected.
func (s *session) titleHint() string {
	if s.job.TitleOverride != "" {
		return s.job.TitleOverride
	}
	if s.discTitle != "" {
		return s.discTitle
	}
	return s.job.Profile
}

// deriveTitle names a staged file. Generic disc labels such as
// "LOGICAL_VOLUME_ID" are not offered as the override.
func (s *session) deriveTitle(ctx context.Context, path string) string {
	override := s.job.TitleOverride
	if override == "" && !disc.IsGenericLabel(s.discTitle) {
		override = s.discTitle
	}
	var prompter staging.Prompter
	if s.o.prompter != nil {
		prompter = s.o.prompter
	}
	title := staging.DeriveTitle(ctx, path, override, prompter)
	s.result.Title = title
	return title
}

// askProcessAll asks once per run, and only when deleting sources makes a
// batch terminate.
func (s *session) askProcessAll(ctx context.Context, count int) {
	if count <= 1 || !s.job.DeleteScratch || s.processAll != processAllUnasked {
		return
	}
	s.processAll = processAllNo
	if s.o.prompter != nil && s.o.prompter.ConfirmProcessAll(ctx, count) {
		s.processAll = processAllYes
	}
	s.logger.Info("multi-file processing decided",
		logging.String(logging.FieldEventType, "process_all_decided"),
		logging.Int("candidates", count),
		logging.Bool("process_all", s.processAll == processAllYes),
	)
}

func (s *session) runTool(ctx context.Context, stage string, cmd runner.Command) error {
	ctx = services.WithStage(ctx, stage)
	tool := filepath.Base(cmd.Binary)
	outcome, err := s.o.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if outcome.State == runner.StillRunningAtCancellation {
		return services.Wrap(services.ErrBackgrounded, stage, tool, "",
			&services.BackgroundedTool{Tool: tool, PID: outcome.PID})
	}
	if outcome.ExitCode != 0 {
		return services.Wrap(services.ErrExternalTool, stage, tool, "", &services.ToolFailure{
			Tool:        tool,
			ExitCode:    outcome.ExitCode,
			LastMessage: outcome.LastMessage,
		})
	}
	return nil
}

func (s *session) publish(ctx context.Context, source, title string) error {
	dest := staging.ComputeDestination(s.job.DestinationDir, s.job.Subfolder, source, title)
	logger := s.logger.With(logging.String("source", source), logging.String("destination", dest.Path()))
	logger.Info("publishing file", logging.String(logging.FieldEventType, "publish_started"))

	display := s.o.sink.Open("Copying " + title)
	defer display.Close()
	if err := fileutil.Copy(ctx, source, dest.Path(), display); err != nil {
		return err
	}
	s.result.Outputs = append(s.result.Outputs, dest.Path())
	logger.Info("file published", logging.String(logging.FieldEventType, "publish_completed"))
	return nil
}

func (s *session) eject(ctx context.Context) {
	if !s.job.Eject {
		return
	}
	if err := s.o.ejector.Eject(ctx, s.job.Device); err != nil {
		logging.WarnWithContext(s.logger, "disc eject failed", "eject_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "eject the disc manually"),
			logging.String(logging.FieldImpact, "disc remains in drive"),
		)
		return
	}
	s.logger.Info("disc ejected", logging.String(logging.FieldEventType, "disc_ejected"))
}

func (s *session) afterSuccess(ctx context.Context) {
	if err := s.o.library.Refresh(ctx); err != nil {
		logging.WarnWithContext(s.logger, "library refresh failed", "library_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check library.url and library.api_key"),
			logging.String(logging.FieldImpact, "new files appear after the next scheduled scan"),
		)
	}
	payload := notifications.Payload{
		"profile": s.job.Profile,
		"title":   s.result.Title,
	}
	if n := len(s.result.Outputs); n > 0 {
		payload["file"] = s.result.Outputs[n-1]
	}
	if err := s.o.notifier.Publish(ctx, notifications.EventRunCompleted, payload); err != nil {
		logging.WarnWithContext(s.logger, "completion notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}
