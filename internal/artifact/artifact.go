package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// PartialSuffix marks files still being written. Nothing under a canonical
// artifact path ever carries this suffix.
const PartialSuffix = ".partial"

// Exists reports whether a completed artifact is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Writer streams content to "<final>.partial" and renames it to the final
// path on Commit. Abort removes the staged file, so an interrupted write
// leaves nothing at the canonical path. Abort after Commit is a no-op,
// which makes "defer w.Abort()" safe on every path.
type Writer struct {
	final   string
	partial string
	file    *os.File
	done    bool
}

// NewWriter stages a write for the given final path, creating parent
// directories as needed.
func NewWriter(finalPath string) (*Writer, error) {
	partial := finalPath + PartialSuffix
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	file, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stage artifact %s: %w", finalPath, err)
	}
	return &Writer{final: finalPath, partial: partial, file: file}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Commit finalizes the artifact by renaming the staged file into place.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(w.partial)
		return fmt.Errorf("sync staged artifact: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.partial)
		return fmt.Errorf("close staged artifact: %w", err)
	}
	if err := os.Rename(w.partial, w.final); err != nil {
		_ = os.Remove(w.partial)
		return fmt.Errorf("finalize artifact %s: %w", w.final, err)
	}
	w.done = true
	return nil
}

// Abort discards the staged file. Calling it after Commit keeps the
// committed artifact.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.file.Close()
	if err := os.Remove(w.partial); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteFile writes payload atomically to path: staged first, renamed into
// place only when fully written.
func WriteFile(path string, payload []byte) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Abort()
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return w.Commit()
}

// Staging reserves a partial path for an external tool that writes the file
// itself (e.g. ffmpeg muxing a video). Commit renames the tool's output into
// place; Discard removes it.
type Staging struct {
	final   string
	partial string
	done    bool
}

// Stage prepares a staging slot for finalPath, creating parent directories.
func Stage(finalPath string) (*Staging, error) {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Staging{final: finalPath, partial: finalPath + PartialSuffix}, nil
}

// Path returns the partial path external tools should write to.
func (s *Staging) Path() string { return s.partial }

// Commit renames the staged file to its final path.
func (s *Staging) Commit() error {
	if s.done {
		return nil
	}
	if err := os.Rename(s.partial, s.final); err != nil {
		return fmt.Errorf("finalize artifact %s: %w", s.final, err)
	}
	s.done = true
	return nil
}

// Discard removes the staged file if present. No-op after Commit.
func (s *Staging) Discard() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := os.Remove(s.partial); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
