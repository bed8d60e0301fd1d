package profile_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ripline/internal/config"
	"ripline/internal/logging"
	"ripline/internal/pipeline"
	"ripline/internal/procsup"
	"ripline/internal/profile"
	"ripline/internal/services"
	"ripline/internal/testsupport"
)

type stubFinder struct {
	running string
	queried [][]string
}

func (f *stubFinder) FindAny(_ context.Context, executables ...string) (procsup.Handle, bool) {
	f.queried = append(f.queried, executables)
	for _, exe := range executables {
		if f.running != "" && filepath.Base(exe) == f.running {
			return procsup.Handle{PID: 77, Name: f.running}, true
		}
	}
	return procsup.Handle{}, false
}

type stubChooser struct {
	pick    int
	ok      bool
	options []string
}

func (c *stubChooser) Choose(_ context.Context, _ string, options []string) (int, bool) {
	c.options = options
	return c.pick, c.ok
}

func profiles() []config.Profile {
	off := false
	return []config.Profile{
		{Name: "Rip only", Mode: "rip", Codec: "H.265"},
		{Name: "Hidden", Mode: "rip", Codec: "H.265", Enabled: &off},
		{Name: "Movie", Mode: "rip_encode", Codec: "H.264", Quality: 20},
	}
}

func TestMenuListsProfilesAndScratchEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ScratchDir, "title_t00.mkv"), 64)
	chooser := &stubChooser{pick: 1, ok: true}

	action, err := profile.NewResolver(cfg, &stubFinder{}, chooser, logging.NewNop()).Resolve(context.Background(), profile.Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"Rip only", "Movie", profile.LabelComplete, profile.LabelClean}
	if len(chooser.options) != len(want) {
		t.Fatalf("options = %v, want %v", chooser.options, want)
	}
	for i := range want {
		if chooser.options[i] != want[i] {
			t.Fatalf("options = %v, want %v", chooser.options, want)
		}
	}
	if action.Kind != profile.RunJob || action.Job.Profile != "Movie" || action.Job.Mode != pipeline.RipAndEncode {
		t.Fatalf("unexpected action: %+v", action)
	}
}

func TestMenuWithoutStagedFilesOmitsComplete(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	chooser := &stubChooser{pick: 2, ok: true}

	action, err := profile.NewResolver(cfg, &stubFinder{}, chooser, logging.NewNop()).Resolve(context.Background(), profile.Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(chooser.options) != 3 || chooser.options[2] != profile.LabelClean {
		t.Fatalf("options = %v", chooser.options)
	}
	if action.Kind != profile.CleanScratch {
		t.Fatalf("kind = %s", action.Kind)
	}
}

func TestMenuOffersOnlyKillWhileToolRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	chooser := &stubChooser{pick: 0, ok: true}
	finder := &stubFinder{running: "HandBrakeCLI"}

	action, err := profile.NewResolver(cfg, finder, chooser, logging.NewNop()).Resolve(context.Background(), profile.Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(chooser.options) != 1 || chooser.options[0] != profile.LabelKill {
		t.Fatalf("options = %v", chooser.options)
	}
	if action.Kind != profile.KillActiveProcesses {
		t.Fatalf("kind = %s", action.Kind)
	}
	if len(finder.queried) == 0 || len(finder.queried[0]) != 2 {
		t.Fatalf("expected ripper and encoder lookup, got %v", finder.queried)
	}
}

func TestMenuDeclinedIsCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	action, err := profile.NewResolver(cfg, &stubFinder{}, &stubChooser{pick: -1}, logging.NewNop()).Resolve(context.Background(), profile.Request{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if action.Kind != profile.Cancelled {
		t.Fatalf("kind = %s", action.Kind)
	}
}

func TestNamedProfileAppliesOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	mode := pipeline.EncodeOnly
	req := profile.Request{Profile: "movie", Mode: &mode, Title: "Alien"}

	action, err := profile.NewResolver(cfg, &stubFinder{}, nil, logging.NewNop()).Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if action.Kind != profile.RunJob || action.Job.Mode != pipeline.EncodeOnly || action.Job.TitleOverride != "Alien" {
		t.Fatalf("unexpected action: %+v", action)
	}
}

func TestNamedProfileErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))

	_, err := profile.NewResolver(cfg, &stubFinder{}, nil, logging.NewNop()).Resolve(context.Background(), profile.Request{Profile: "Hidden"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("disabled profile should be a configuration error, got %v", err)
	}

	_, err = profile.NewResolver(cfg, &stubFinder{running: "makemkvcon"}, nil, logging.NewNop()).Resolve(context.Background(), profile.Request{Profile: "Movie"})
	if err == nil {
		t.Fatal("expected refusal while the ripper runs")
	}
}

func TestNoChooserWithoutProfileIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfiles(profiles()...))
	_, err := profile.NewResolver(cfg, &stubFinder{}, nil, logging.NewNop()).Resolve(context.Background(), profile.Request{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if profile.CompleteAbortedRip.String() != "complete_aborted_rip" || profile.Kind(42).String() != "kind(42)" {
		t.Fatal("unexpected kind strings")
	}
}
