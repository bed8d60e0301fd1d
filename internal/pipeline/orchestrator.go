package pipeline

import (
	"context"
	"log/slog"

	"ripline/internal/disc"
	"ripline/internal/logging"
	"ripline/internal/notifications"
	"ripline/internal/progressui"
	"ripline/internal/runner"
	"ripline/internal/services"
	"ripline/internal/services/jellyfin"
	"ripline/internal/staging"
)

// ToolRunner executes one external tool and observes it to completion or
// cancellation.
type ToolRunner interface {
	Run(ctx context.Context, cmd runner.Command) (runner.Outcome, error)
}

// Prompter answers the interactive questions a run may raise.
type Prompter interface {
	staging.Prompter
	// ConfirmProcessAll asks whether every eligible file in scratch should
	// be processed instead of only the largest.
	ConfirmProcessAll(ctx context.Context, count int) bool
}

// Result describes a finished run.
type Result struct {
	DiscTitle string
	Title     string
	Outputs   []string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEjector overrides the disc ejector.
func WithEjector(e disc.Ejector) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.ejector = e
		}
	}
}

// WithLibrary sets the library refreshed after a successful run.
func WithLibrary(s jellyfin.Service) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.library = s
		}
	}
}

// WithNotifier sets the completion notifier.
func WithNotifier(s notifications.Service) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.notifier = s
		}
	}
}

// WithPrompter sets the operator prompter. Without one, generic titles fall
// back to a timestamp and multi-file batches process only the largest file.
func WithPrompter(p Prompter) Option {
	return func(o *Orchestrator) {
		o.prompter = p
	}
}

// WithSink sets the display used for copy progress.
func WithSink(s progressui.Sink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sink = s
		}
	}
}

// Orchestrator runs jobs.
type Orchestrator struct {
	runner   ToolRunner
	finder   staging.ProcessFinder
	ejector  disc.Ejector
	library  jellyfin.Service
	notifier notifications.Service
	prompter Prompter
	sink     progressui.Sink
	logger   *slog.Logger
}

// New constructs an orchestrator. finder guards scratch deletions against
// running tools.
func New(run ToolRunner, finder staging.ProcessFinder, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:   run,
		finder:   finder,
		ejector:  disc.NewEjector(),
		library:  jellyfin.NewHTTPService("", "", nil),
		notifier: notifications.NewService(nil),
		sink:     progressui.Nop{},
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes job. Failures are tagged with the services sentinels; a
// cancelled run whose tool keeps working returns services.ErrBackgrounded.
func (o *Orchestrator) Run(ctx context.Context, job Job) (Result, error) {
	ctx = services.WithProfile(ctx, job.Profile)
	logger := logging.WithContext(ctx, o.logger).With(logging.String("mode", job.Mode.String()))
	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "pipeline_started"),
		logging.String("scratch_dir", job.ScratchDir),
		logging.String("destination_dir", job.DestinationDir),
	)

	s := &session{
		o:         o,
		job:       job,
		logger:    logger,
		lifecycle: staging.NewLifecycle(o.finder, job.Tools(), job.DeleteScratch, o.logger),
	}

	var err error
	switch job.Mode {
	case RipOnly:
		err = s.ripOnly(ctx)
	case RipAndEncode:
		err = s.ripAndEncode(ctx)
	case EncodeOnly:
		err = s.encodeLoop(ctx)
	case BackupISO:
		err = s.backupISO(ctx)
	default:
		err = services.Wrap(services.ErrConfiguration, "pipeline", "dispatch", "unknown mode "+job.Mode.String(), nil)
	}
	if err != nil {
		return s.result, err
	}

	s.afterSuccess(ctx)
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_completed"),
		logging.String("title", s.result.Title),
		logging.Int("outputs", len(s.result.Outputs)),
	)
	return s.result, nil
}
