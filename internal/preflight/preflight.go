package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"fakebench/internal/config"
)

// Result reports the outcome of a single preflight check. Failed checks
// marked Warning should be logged but do not abort the run.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunGenerate executes the checks required before a generation run over the
// given data root.
func RunGenerate(cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckBinary("FFmpeg", cfg.Media.FFmpegBinary),
		CheckBinary("FFprobe", cfg.Media.FFprobeBinary),
		CheckDirectoryAccess("Data root", root),
	}
	results = append(results, CheckFreeSpace("Free space", root, cfg.Preflight.MinFreeGiB))
	return results
}

// FirstFailure returns the first failed check that is not a warning.
func FirstFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed && !result.Warning {
			return result, true
		}
	}
	return Result{}, false
}

// Warnings returns the failed checks that only warrant a warning.
func Warnings(results []Result) []Result {
	var warnings []Result
	for _, result := range results {
		if !result.Passed && result.Warning {
			warnings = append(warnings, result)
		}
	}
	return warnings
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinary verifies that the command resolves on PATH.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	if _, err := exec.LookPath(command); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: command}
}

var statfs = func(path string) (total, free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	return stat.Blocks * uint64(stat.Bsize), stat.Bavail * uint64(stat.Bsize), nil
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minFreeGiB available. Shortfalls are warnings, not hard failures, so a
// nearly full disk still allows a run that mostly skips existing artifacts.
func CheckFreeSpace(name, path string, minFreeGiB int) Result {
	if minFreeGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "floor disabled"}
	}
	total, free, err := statfs(path)
	if err != nil {
		return Result{Name: name, Warning: true, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	floor := uint64(minFreeGiB) << 30
	if free < floor {
		return Result{
			Name:    name,
			Warning: true,
			Detail: fmt.Sprintf("%s has %.1f GiB free of %.1f GiB, below the %d GiB floor",
				path, float64(free)/(1<<30), float64(total)/(1<<30), minFreeGiB),
		}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30)),
	}
}
