package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ripline/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "encoding", "handbrake", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encoding", "handbrake", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  services.Kind
		fatal bool
	}{
		{"nil", nil, services.KindNone, false},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "tools.ripper must be set", nil), services.KindConfiguration, true},
		{"media", services.Wrap(services.ErrMediaAbsent, "detect", "", "", nil), services.KindMediaAbsent, true},
		{"tool", services.Wrap(services.ErrExternalTool, "ripping", "", "", &services.ToolFailure{Tool: "makemkvcon", ExitCode: 2}), services.KindExternalTool, true},
		{"medium", services.Wrap(services.ErrMediumError, "ripping", "", "", nil), services.KindMediumError, true},
		{"files", services.Wrap(services.ErrNoEligibleFiles, "staging", "", "", nil), services.KindNoEligibleFiles, true},
		{"background", services.Wrap(services.ErrBackgrounded, "encoding", "", "", nil), services.KindBackgrounded, false},
		{"copy", services.Wrap(services.ErrCopyInterrupted, "publish", "", "", errors.New("disk full")), services.KindCopyInterrupted, true},
		{"unexpected", errors.New("weird"), services.KindUnexpected, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.Classify(tt.err)
			if got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
			if got.Fatal() != tt.fatal {
				t.Fatalf("Fatal = %v, want %v", got.Fatal(), tt.fatal)
			}
		})
	}
}

func TestLastToolMessage(t *testing.T) {
	failure := &services.ToolFailure{Tool: "makemkvcon", ExitCode: 1, LastMessage: " Failed to open disc "}
	err := fmt.Errorf("outer: %w", services.Wrap(services.ErrExternalTool, "ripping", "makemkv", "", failure))
	if got := services.LastToolMessage(err); got != "Failed to open disc" {
		t.Fatalf("unexpected last message %q", got)
	}
	if !strings.Contains(err.Error(), "exited with status 1") {
		t.Fatalf("expected exit status in %q", err.Error())
	}
	if services.LastToolMessage(errors.New("plain")) != "" {
		t.Fatal("expected empty message for plain error")
	}
}

func TestBackgroundedFrom(t *testing.T) {
	err := services.Wrap(services.ErrBackgrounded, "encode", "HandBrakeCLI", "", &services.BackgroundedTool{Tool: "HandBrakeCLI", PID: 4242})
	bg, ok := services.BackgroundedFrom(err)
	if !ok {
		t.Fatal("expected backgrounded tool")
	}
	if bg.Tool != "HandBrakeCLI" || bg.PID != 4242 {
		t.Fatalf("unexpected tool %+v", bg)
	}
	if !strings.Contains(err.Error(), "pid 4242") {
		t.Fatalf("expected pid in %q", err.Error())
	}
	if _, ok := services.BackgroundedFrom(errors.New("plain")); ok {
		t.Fatal("plain error is not backgrounded")
	}
}
