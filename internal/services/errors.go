package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration   = errors.New("configuration incomplete")
	ErrMediaAbsent     = errors.New("removable media not present")
	ErrExternalTool    = errors.New("external tool error")
	ErrMediumError     = errors.New("medium or hardware error")
	ErrNoEligibleFiles = errors.New("no eligible files")
	ErrBackgrounded    = errors.New("pipeline handed off to background")
	ErrCopyInterrupted = errors.New("copy interrupted")
)

// Kind names the user-facing error classes the top-level dispatcher reports.
type Kind string

const (
	KindNone            Kind = ""
	KindConfiguration   Kind = "configuration_incomplete"
	KindMediaAbsent     Kind = "media_absent"
	KindExternalTool    Kind = "external_tool_failed"
	KindMediumError     Kind = "medium_or_hardware_error"
	KindNoEligibleFiles Kind = "no_eligible_files"
	KindBackgrounded    Kind = "backgrounded_pipeline"
	KindCopyInterrupted Kind = "copy_interrupted"
	KindUnexpected      Kind = "unexpected"
)

// Fatal reports whether the kind should be surfaced to the user as a failure.
// A backgrounded pipeline is resumable and only logged.
func (k Kind) Fatal() bool {
	return k != KindNone && k != KindBackgrounded
}

// ToolFailure carries diagnostics for an external tool that exited non-zero.
type ToolFailure struct {
	Tool        string
	ExitCode    int
	LastMessage string
}

func (f *ToolFailure) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", f.Tool, f.ExitCode)
	if last := strings.TrimSpace(f.LastMessage); last != "" {
		msg += ": " + last
	}
	return msg
}

// BackgroundedTool identifies a tool left running when the run was cancelled.
type BackgroundedTool struct {
	Tool string
	PID  int
}

func (b *BackgroundedTool) Error() string {
	return fmt.Sprintf("%s (pid %d) still running", b.Tool, b.PID)
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto the kind reported at the run boundary.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBackgrounded):
		return KindBackgrounded
	case errors.Is(err, ErrMediumError):
		return KindMediumError
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMediaAbsent):
		return KindMediaAbsent
	case errors.Is(err, ErrNoEligibleFiles):
		return KindNoEligibleFiles
	case errors.Is(err, ErrCopyInterrupted):
		return KindCopyInterrupted
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	default:
		return KindUnexpected
	}
}

// LastToolMessage extracts the last log line of a failed external tool, if any.
func LastToolMessage(err error) string {
	var failure *ToolFailure
	if errors.As(err, &failure) {
		return strings.TrimSpace(failure.LastMessage)
	}
	return ""
}

// BackgroundedFrom extracts the tool left running by a backgrounded run.
func BackgroundedFrom(err error) (*BackgroundedTool, bool) {
	var bg *BackgroundedTool
	if errors.As(err, &bg) {
		return bg, true
	}
	return nil, false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
