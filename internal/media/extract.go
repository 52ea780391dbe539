package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Extractor decodes video files to packed RGB frames through ffmpeg.
type Extractor struct {
	ffmpeg  string
	ffprobe string
}

// NewExtractor builds an extractor using the given ffmpeg and ffprobe
// binaries.
func NewExtractor(ffmpegBinary, ffprobeBinary string) *Extractor {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{ffmpeg: ffmpegBinary, ffprobe: ffprobeBinary}
}

// Probe inspects path with the extractor's ffprobe binary.
func (e *Extractor) Probe(ctx context.Context, path string) (Info, error) {
	return Probe(ctx, e.ffprobe, path)
}

// ReadFrames probes path, decodes it to RGB, and invokes fn once per frame
// in display order. An error returned by fn stops decoding immediately and
// is returned unchanged, so callers can abandon a video mid-stream.
func (e *Extractor) ReadFrames(ctx context.Context, path string, fn func(Frame) error) error {
	info, err := Probe(ctx, e.ffprobe, path)
	if err != nil {
		return err
	}

	cmd := commandContext(ctx, e.ffmpeg,
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start frame extraction: %w", err)
	}

	frameBytes := info.Width * info.Height * 3
	buf := make([]byte, frameBytes)
	for {
		_, err := io.ReadFull(stdout, buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("extract %s: truncated frame", path)
			}
			return fmt.Errorf("extract %s: %w", path, err)
		}

		frame := Frame{Width: info.Width, Height: info.Height, Pix: append([]byte(nil), buf...)}
		if err := fn(frame); err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return err
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("extract %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
