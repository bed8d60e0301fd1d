package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ripline/internal/history"
	"ripline/internal/pipeline"
	"ripline/internal/services"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "paths.destination_dir must be set", nil), "Configuration incomplete"},
		{"media", services.Wrap(services.ErrMediaAbsent, "rip", "", "no disc in drive 0", nil), "No disc in the drive"},
		{"tool", services.Wrap(services.ErrExternalTool, "rip", "makemkvcon", "", &services.ToolFailure{Tool: "makemkvcon", ExitCode: 2, LastMessage: "Failed to open disc"}), "makemkvcon failed with exit code 2: Failed to open disc"},
		{"medium", services.Wrap(services.ErrMediumError, "rip", "makemkvcon", "read error", nil), "read error"},
		{"no files", services.Wrap(services.ErrNoEligibleFiles, "encode", "", "", nil), "No eligible files found in /scratch"},
		{"copy", services.Wrap(services.ErrCopyInterrupted, "publish", "", "", errors.New("disk full")), "stays in scratch"},
		{"backgrounded", services.Wrap(services.ErrBackgrounded, "encode", "", "", &services.BackgroundedTool{Tool: "HandBrakeCLI", PID: 77}), "HandBrakeCLI (pid 77) keeps running"},
		{"unexpected", errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := userMessage(services.Classify(tt.err), tt.err, "/scratch")
			if !strings.Contains(got, tt.want) {
				t.Fatalf("userMessage = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestOutcomeFor(t *testing.T) {
	result := pipeline.Result{Title: "Heat", Outputs: []string{"/a.mkv", "/b.mkv"}}

	ok := outcomeFor(result, nil)
	if ok.Status != history.StatusCompleted || ok.OutputPath != "/b.mkv" || ok.ErrorKind != "" {
		t.Fatalf("unexpected success outcome %+v", ok)
	}

	failure := services.Wrap(services.ErrExternalTool, "encode", "HandBrakeCLI", "", &services.ToolFailure{Tool: "HandBrakeCLI", ExitCode: 3, LastMessage: "bad preset"})
	failed := outcomeFor(pipeline.Result{}, failure)
	if failed.Status != history.StatusFailed || failed.ErrorKind != string(services.KindExternalTool) || failed.LastMessage != "bad preset" {
		t.Fatalf("unexpected failure outcome %+v", failed)
	}

	bg := outcomeFor(pipeline.Result{}, services.Wrap(services.ErrBackgrounded, "rip", "", "", nil))
	if bg.Status != history.StatusBackgrounded {
		t.Fatalf("unexpected backgrounded outcome %+v", bg)
	}

	cancelled := outcomeFor(pipeline.Result{}, fmt.Errorf("run: %w", context.Canceled))
	if cancelled.Status != history.StatusCancelled {
		t.Fatalf("unexpected cancelled outcome %+v", cancelled)
	}
}

func TestModeFlag(t *testing.T) {
	f := &modeFlag{}
	if f.String() != "" {
		t.Fatalf("unset flag = %q", f.String())
	}
	if err := f.Set("backup_iso"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.mode == nil || *f.mode != pipeline.BackupISO || f.String() != "backup_iso" {
		t.Fatalf("unexpected mode %v", f.mode)
	}
	if err := f.Set("2"); err != nil || *f.mode != pipeline.EncodeOnly {
		t.Fatalf("numeric mode: %v %v", err, f.mode)
	}
	if err := f.Set("stream"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if f.Type() != "mode" {
		t.Fatalf("Type = %q", f.Type())
	}
}
