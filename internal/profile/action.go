package profile

import (
	"fmt"

	"ripline/internal/pipeline"
)

// Kind tags an Action.
type Kind int

const (
	Cancelled Kind = iota
	RunJob
	KillActiveProcesses
	CleanScratch
	CompleteAbortedRip
)

func (k Kind) String() string {
	switch k {
	case Cancelled:
		return "cancelled"
	case RunJob:
		return "run_job"
	case KillActiveProcesses:
		return "kill_active_processes"
	case CleanScratch:
		return "clean_scratch"
	case CompleteAbortedRip:
		return "complete_aborted_rip"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is the resolved outcome of the profile menu. Job is only set for
// RunJob.
type Action struct {
	Kind Kind
	Job  pipeline.Job
}
