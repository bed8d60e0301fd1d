package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ripline/internal/notifications"
	"ripline/internal/pipeline"
	"ripline/internal/progressui"
	"ripline/internal/services"
	"ripline/internal/testsupport"
)

func TestRecoverPublishesAndRemovesSource(t *testing.T) {
	h := newHarness(t, "", "", "")
	source := filepath.Join(h.cfg.Paths.ScratchDir, "Blade_Runner_t03.mkv")
	testsupport.WriteFile(t, source, 2048)

	job, err := pipeline.RecoveryJob(h.cfg)
	if err != nil {
		t.Fatalf("RecoveryJob: %v", err)
	}
	result, err := h.orchestrator(progressui.Nop{}).Recover(context.Background(), job.WithTitle("ignored because the stem is specific"))
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	want := filepath.Join(h.cfg.Paths.DestinationDir, "Blade Runner", "Blade Runner.mkv")
	if len(result.Outputs) != 1 || result.Outputs[0] != want || !exists(want) {
		t.Fatalf("outputs = %v, want %s", result.Outputs, want)
	}
	if exists(source) {
		t.Fatal("recovered source must be removed")
	}
	if h.library.refreshed != 1 {
		t.Fatalf("library refreshed %d times", h.library.refreshed)
	}
	if len(h.notifier.events) != 1 || h.notifier.events[0] != notifications.EventAbortedRipCompleted {
		t.Fatalf("unexpected notifications: %v", h.notifier.events)
	}
}

func TestRecoverKeepsSourceWhileToolRuns(t *testing.T) {
	h := newHarness(t, "", "", "")
	source := filepath.Join(h.cfg.Paths.ScratchDir, "title_t00.mkv")
	testsupport.WriteFile(t, source, 2048)
	h.finder.set("makemkvcon", 99)
	h.prompter.titles = []string{"Heat"}

	job, err := pipeline.RecoveryJob(h.cfg)
	if err != nil {
		t.Fatalf("RecoveryJob: %v", err)
	}
	if _, err := h.orchestrator(progressui.Nop{}).Recover(context.Background(), job); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !exists(filepath.Join(h.cfg.Paths.DestinationDir, "Heat", "Heat.mkv")) {
		t.Fatal("expected published copy")
	}
	if !exists(source) {
		t.Fatal("source must stay while the ripper runs")
	}
}

func TestRecoverWithEmptyScratch(t *testing.T) {
	h := newHarness(t, "", "", "")
	job, _ := pipeline.RecoveryJob(h.cfg)
	_, err := h.orchestrator(progressui.Nop{}).Recover(context.Background(), job)
	if !errors.Is(err, services.ErrNoEligibleFiles) {
		t.Fatalf("expected no eligible files, got %v", err)
	}
}
