package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"fakebench/internal/artifact"
)

// WriterOptions configure a video writer.
type WriterOptions struct {
	Path   string // final output path
	Width  int
	Height int
	FPS    int
}

// Writer muxes packed RGB frames into an mp4 through ffmpeg. Frames land in
// a staged partial file that is renamed into place only when Close succeeds,
// so an interrupted write never leaves a video at the canonical path.
type Writer struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *bytes.Buffer
	staging *artifact.Staging
	opts    WriterOptions
	done    bool
}

// NewWriter spawns ffmpeg for the given output. Cancelling ctx kills the
// encoder; call Abort afterwards to drop the partial file.
func NewWriter(ctx context.Context, binary string, opts WriterOptions) (*Writer, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("video dimensions %dx%d invalid", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("video frame rate %d invalid", opts.FPS)
	}

	staging, err := artifact.Stage(opts.Path)
	if err != nil {
		return nil, err
	}

	cmd := commandContext(ctx, binary,
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FPS),
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		staging.Path(),
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		_ = staging.Discard()
		return nil, fmt.Errorf("start video writer: %w", err)
	}

	return &Writer{cmd: cmd, stdin: stdin, stderr: &stderr, staging: staging, opts: opts}, nil
}

// WriteFrame appends one frame to the video.
func (w *Writer) WriteFrame(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	if frame.Width != w.opts.Width || frame.Height != w.opts.Height {
		return fmt.Errorf("frame %dx%d does not match video %dx%d",
			frame.Width, frame.Height, w.opts.Width, w.opts.Height)
	}
	if _, err := w.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close finalizes the encode and renames the video into place. On failure
// the partial file is removed and nothing appears at the canonical path.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.stdin.Close(); err != nil {
		_ = w.cmd.Process.Kill()
		_ = w.cmd.Wait()
		_ = w.staging.Discard()
		return fmt.Errorf("close video input: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		_ = w.staging.Discard()
		return fmt.Errorf("finish video %s: %w: %s", w.opts.Path, err, strings.TrimSpace(w.stderr.String()))
	}
	return w.staging.Commit()
}

// Abort kills the encoder and drops the partial file. No-op after Close.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	_ = w.stdin.Close()
	_ = w.cmd.Process.Kill()
	_ = w.cmd.Wait()
	_ = w.staging.Discard()
}
