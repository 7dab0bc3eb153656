package preflight

import (
	"reelforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for a montage run: tool binaries,
// workspace root access, free disk, and source readability.
func RunAll(cfg *config.Config, sources []string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckBinaries(Requirements(cfg)) {
		results = append(results, status.Result())
	}

	results = append(results, CheckDirectoryAccess("Temp root", cfg.Paths.TempRoot))
	results = append(results, CheckFreeSpace("Free disk", cfg.Paths.TempRoot, float64(cfg.Montage.MinFreeGiB)))

	for _, source := range sources {
		results = append(results, CheckFileReadable("Source", source))
	}

	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
