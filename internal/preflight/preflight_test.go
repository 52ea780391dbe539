package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fakebench/internal/testsupport"
)

func setStatfs(t *testing.T, total, free uint64, err error) {
	t.Helper()
	original := statfs
	statfs = func(string) (uint64, uint64, error) {
		return total, free, err
	}
	t.Cleanup(func() {
		statfs = original
	})
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("Data root", dir); !result.Passed {
		t.Fatalf("expected pass for %s: %+v", dir, result)
	}

	missing := filepath.Join(dir, "absent")
	if result := CheckDirectoryAccess("Data root", missing); result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("expected does-not-exist failure: %+v", result)
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if result := CheckDirectoryAccess("Data root", file); result.Passed || !strings.Contains(result.Detail, "not a directory") {
		t.Fatalf("expected not-a-directory failure: %+v", result)
	}
}

func TestCheckBinary(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	if result := CheckBinary("FFmpeg", "ffmpeg"); !result.Passed {
		t.Fatalf("expected pass: %+v", result)
	}
	if result := CheckBinary("FFprobe", "ffprobe"); result.Passed {
		t.Fatalf("expected failure for missing binary: %+v", result)
	}
	if result := CheckBinary("FFmpeg", "  "); result.Passed || result.Detail != "command not configured" {
		t.Fatalf("expected not-configured failure: %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	setStatfs(t, 100<<30, 50<<30, nil)
	if result := CheckFreeSpace("Free space", "/data", 5); !result.Passed {
		t.Fatalf("expected pass with 50 GiB free: %+v", result)
	}

	setStatfs(t, 100<<30, 2<<30, nil)
	result := CheckFreeSpace("Free space", "/data", 5)
	if result.Passed || !result.Warning {
		t.Fatalf("expected warning below floor: %+v", result)
	}
	if !strings.Contains(result.Detail, "below the 5 GiB floor") {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}

	setStatfs(t, 0, 0, errors.New("nope"))
	if result := CheckFreeSpace("Free space", "/data", 5); result.Passed || !result.Warning {
		t.Fatalf("expected warning on statfs error: %+v", result)
	}

	if result := CheckFreeSpace("Free space", "/data", 0); !result.Passed {
		t.Fatalf("expected pass with disabled floor: %+v", result)
	}
}

func TestRunGeneratePassesWithStubbedEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.Preflight.MinFreeGiB = 0
	root := t.TempDir()

	results := RunGenerate(cfg, root)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failure, found := FirstFailure(results); found {
		t.Fatalf("unexpected failure: %+v", failure)
	}
}

func TestFirstFailureSkipsWarnings(t *testing.T) {
	results := []Result{
		{Name: "A", Passed: true},
		{Name: "B", Warning: true, Detail: "low space"},
		{Name: "C", Detail: "missing"},
	}

	failure, found := FirstFailure(results)
	if !found || failure.Name != "C" {
		t.Fatalf("expected C to fail, got %+v found=%v", failure, found)
	}

	warnings := Warnings(results)
	if len(warnings) != 1 || warnings[0].Name != "B" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
}
