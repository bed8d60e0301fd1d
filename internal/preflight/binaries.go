package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"ripline/internal/config"
)

// Requirement defines an external executable ripline drives.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Result converts the status into a preflight result. Missing optional
// binaries pass with a warning.
func (s Status) Result() Result {
	switch {
	case s.Available:
		return Result{Name: s.Name, Passed: true, Detail: s.Path}
	case s.Optional:
		return Result{Name: s.Name, Passed: true, Warning: true, Detail: s.Detail}
	default:
		return Result{Name: s.Name, Detail: s.Detail}
	}
}

// ToolRequirements lists the configured ripper, encoder and ISO builder.
// The ISO builder is only required when an enabled profile backs up to ISO,
// and the encoder only when one encodes.
func ToolRequirements(cfg *config.Config) []Requirement {
	needEncoder, needISO := false, false
	for _, p := range cfg.EnabledProfiles() {
		switch p.Mode {
		case "rip_encode", "encode":
			needEncoder = true
		case "backup_iso":
			needISO = true
		}
	}
	return []Requirement{
		{Name: "MakeMKV", Command: cfg.Tools.Ripper, Description: "Required for disc ripping"},
		{Name: "HandBrake", Command: cfg.Tools.Encoder, Description: "Required for encoding", Optional: !needEncoder},
		{Name: "mkisofs", Command: cfg.Tools.ISOBuilder, Description: "Required for ISO backups", Optional: !needISO},
	}
}

// CheckBinaries resolves each requirement through PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}
