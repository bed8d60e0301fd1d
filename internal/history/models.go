package history

import "time"

// Status is the outcome recorded for a run.
type Status string

const (
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusBackgrounded Status = "backgrounded"
	StatusCancelled    Status = "cancelled"
)

// Run is one ledger entry.
type Run struct {
	ID           string
	Profile      string
	Mode         string
	Status       Status
	Title        string
	OutputPath   string
	ErrorKind    string
	ErrorMessage string
	LastMessage  string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is what Finish records.
type Outcome struct {
	Status       Status
	Title        string
	OutputPath   string
	ErrorKind    string
	ErrorMessage string
	LastMessage  string
}
