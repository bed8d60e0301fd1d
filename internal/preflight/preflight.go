package preflight

import (
	"context"

	"ripline/internal/config"
)

// MinScratchFree is the free-space threshold below which the scratch check
// warns. A Blu-ray rip plus its encode needs roughly this much room.
const MinScratchFree uint64 = 25 << 30

// Result reports the outcome of a single preflight check. Warning results
// passed but deserve attention.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckBinaries(ToolRequirements(cfg)) {
		results = append(results, status.Result())
	}

	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	results = append(results, CheckFreeSpace("Scratch free space", cfg.Paths.ScratchDir, MinScratchFree))
	results = append(results, CheckDirectoryAccess("Destination directory", cfg.Paths.DestinationDir))

	if cfg.Library.Refresh {
		results = append(results, CheckJellyfin(ctx, cfg.Library.URL, cfg.Library.APIKey))
	}
	if cfg.Disc.Device != "" {
		results = append(results, CheckDrive(cfg.Disc.Device))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
