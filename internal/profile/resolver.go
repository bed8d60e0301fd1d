package profile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ripline/internal/config"
	"ripline/internal/logging"
	"ripline/internal/pipeline"
	"ripline/internal/procsup"
	"ripline/internal/services"
	"ripline/internal/staging"
)

// Menu labels for the entries that are not profiles.
const (
	LabelKill     = "Kill active processes"
	LabelClean    = "Clean scratch directory"
	LabelComplete = "Complete aborted rip"
)

// Chooser presents options and returns the chosen index. ok is false when
// the operator backed out.
type Chooser interface {
	Choose(ctx context.Context, title string, options []string) (index int, ok bool)
}

// Request carries command-line overrides. An empty Profile shows the menu.
type Request struct {
	Profile string
	Mode    *pipeline.Mode
	Title   string
}

// Resolver builds the profile menu.
type Resolver struct {
	cfg     *config.Config
	finder  staging.ProcessFinder
	chooser Chooser
	logger  *slog.Logger
}

// NewResolver constructs a resolver. finder detects running ripper and
// encoder processes; chooser may be nil when only --profile is used.
func NewResolver(cfg *config.Config, finder staging.ProcessFinder, chooser Chooser, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:     cfg,
		finder:  finder,
		chooser: chooser,
		logger:  logging.NewComponentLogger(logger, "profile"),
	}
}

type entry struct {
	label   string
	kind    Kind
	profile config.Profile
}

// Resolve returns the action for req. While the ripper or encoder runs, the
// menu offers nothing but killing them and a named profile is refused.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Action, error) {
	logger := logging.WithContext(ctx, r.logger)
	if name := strings.TrimSpace(req.Profile); name != "" {
		if h, busy := r.busy(ctx); busy {
			return Action{}, fmt.Errorf("%s (pid %d) is still running; run 'ripline kill' first", h.Name, h.PID)
		}
		p, ok := r.lookup(name)
		if !ok {
			return Action{}, services.Wrap(services.ErrConfiguration, "profile", "resolve",
				fmt.Sprintf("no enabled profile named %q", name), nil)
		}
		return r.runJob(p, req)
	}

	entries := r.entries(ctx)
	if len(entries) == 0 {
		return Action{}, services.Wrap(services.ErrConfiguration, "profile", "resolve", "no profile is enabled", nil)
	}
	if r.chooser == nil {
		return Action{}, services.Wrap(services.ErrConfiguration, "profile", "resolve", "no profile given and no terminal to ask", nil)
	}

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.label
	}
	idx, ok := r.chooser.Choose(ctx, "Choose a profile", labels)
	if !ok || idx < 0 || idx >= len(entries) {
		logger.Info("no profile selected", logging.String(logging.FieldEventType, "profile_cancelled"))
		return Action{Kind: Cancelled}, nil
	}
	chosen := entries[idx]
	logger.Info("profile selected",
		logging.String(logging.FieldEventType, "profile_selected"),
		logging.String("choice", chosen.label),
		logging.String("action", chosen.kind.String()),
	)
	if chosen.kind != RunJob {
		return Action{Kind: chosen.kind}, nil
	}
	return r.runJob(chosen.profile, req)
}

func (r *Resolver) runJob(p config.Profile, req Request) (Action, error) {
	job, err := pipeline.NewJob(r.cfg, p)
	if err != nil {
		return Action{}, err
	}
	if req.Mode != nil {
		job = job.WithMode(*req.Mode)
	}
	if req.Title != "" {
		job = job.WithTitle(req.Title)
	}
	return Action{Kind: RunJob, Job: job}, nil
}

func (r *Resolver) entries(ctx context.Context) []entry {
	if _, busy := r.busy(ctx); busy {
		return []entry{{label: LabelKill, kind: KillActiveProcesses}}
	}
	var out []entry
	for _, p := range r.cfg.EnabledProfiles() {
		out = append(out, entry{label: p.Name, kind: RunJob, profile: p})
	}
	if _, _, err := staging.SelectCandidate(ctx, logging.NewNop(), r.cfg.Paths.ScratchDir, staging.VideoExtensions); err == nil {
		out = append(out, entry{label: LabelComplete, kind: CompleteAbortedRip})
	}
	if info, err := os.Stat(r.cfg.Paths.ScratchDir); err == nil && info.IsDir() {
		out = append(out, entry{label: LabelClean, kind: CleanScratch})
	}
	return out
}

// busy reports a running ripper or encoder. The ISO builder is short-lived
// and not offered for killing.
func (r *Resolver) busy(ctx context.Context) (procsup.Handle, bool) {
	if r.finder == nil {
		return procsup.Handle{}, false
	}
	return r.finder.FindAny(ctx, r.cfg.Tools.Ripper, r.cfg.Tools.Encoder)
}

func (r *Resolver) lookup(name string) (config.Profile, bool) {
	for _, p := range r.cfg.EnabledProfiles() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return config.Profile{}, false
}
