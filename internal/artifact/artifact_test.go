package artifact_test

import (
	"os"
	"path/filepath"
	"testing"

	"fakebench/internal/artifact"
)

func TestWriterCommit(t *testing.T) {
	final := filepath.Join(t.TempDir(), "encodings", "254.txt")

	w, err := artifact.NewWriter(final)
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if artifact.Exists(final) {
		t.Fatal("final path must not exist before Commit")
	}
	if !artifact.Exists(final + artifact.PartialSuffix) {
		t.Fatal("expected staged partial file during write")
	}

	if err := w.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	content, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read committed artifact: %v", err)
	}
	if string(content) != "payload" {
		t.Fatalf("unexpected content: %q", content)
	}
	if artifact.Exists(final + artifact.PartialSuffix) {
		t.Fatal("partial file must be gone after Commit")
	}
}

func TestWriterAbortLeavesNothing(t *testing.T) {
	final := filepath.Join(t.TempDir(), "183_254.mp4")

	w, err := artifact.NewWriter(final)
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	if _, err := w.Write([]byte("half a video")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort returned error: %v", err)
	}

	if artifact.Exists(final) {
		t.Fatal("final path must not exist after Abort")
	}
	if artifact.Exists(final + artifact.PartialSuffix) {
		t.Fatal("partial file must be removed by Abort")
	}
}

func TestWriterAbortAfterCommitKeepsArtifact(t *testing.T) {
	final := filepath.Join(t.TempDir(), "out.txt")

	w, err := artifact.NewWriter(final)
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	if _, err := w.Write([]byte("done")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort after Commit returned error: %v", err)
	}
	if !artifact.Exists(final) {
		t.Fatal("committed artifact must survive a deferred Abort")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.txt")
	if err := artifact.WriteFile(path, []byte("abc")); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(content) != "abc" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if !artifact.Exists(present) {
		t.Fatal("expected Exists true for file")
	}
	if artifact.Exists(filepath.Join(dir, "absent.txt")) {
		t.Fatal("expected Exists false for missing file")
	}
	if artifact.Exists(dir) {
		t.Fatal("expected Exists false for directory")
	}
}

func TestStagingCommit(t *testing.T) {
	final := filepath.Join(t.TempDir(), "videos", "183_254.mp4")

	s, err := artifact.Stage(final)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if s.Path() != final+artifact.PartialSuffix {
		t.Fatalf("unexpected staging path: %q", s.Path())
	}

	// Simulate the external tool producing the staged file.
	if err := os.WriteFile(s.Path(), []byte("video"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}

	if err := s.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if !artifact.Exists(final) {
		t.Fatal("expected committed artifact")
	}
	if artifact.Exists(s.Path()) {
		t.Fatal("partial file must be gone after Commit")
	}
}

func TestStagingDiscard(t *testing.T) {
	final := filepath.Join(t.TempDir(), "183_254.mp4")

	s, err := artifact.Stage(final)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte("partial video"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	if err := s.Discard(); err != nil {
		t.Fatalf("Discard returned error: %v", err)
	}
	if artifact.Exists(final) || artifact.Exists(s.Path()) {
		t.Fatal("Discard must leave nothing behind")
	}

	// Discard with no staged file present is fine too.
	s2, err := artifact.Stage(final)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if err := s2.Discard(); err != nil {
		t.Fatalf("Discard without file returned error: %v", err)
	}
}
