package gannotation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"fakebench/internal/encoding"
	"fakebench/internal/media"
	"fakebench/internal/services"
)

// Generator drives a face through a landmark sequence. Implementations
// yield one reenacted frame per encoding frame, in order, through fn. An
// error returned by fn stops generation and is passed back unchanged.
type Generator interface {
	Reenact(ctx context.Context, face media.Frame, seq encoding.Sequence, fn func(media.Frame) error) error
}

// Executor abstracts generator process execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(io.Reader) error) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client invokes the external GANnotation generator command. The face crop
// and the landmark sequence are handed over as temporary files; the
// generator streams raw RGB24 frames back on stdout.
type Client struct {
	command string
	weights string
	exec    Executor
}

// New constructs a generator client.
func New(command, weights string, opts ...Option) (*Client, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gannotation", "new client",
			"generator command required", nil)
	}
	client := &Client{
		command: command,
		weights: strings.TrimSpace(weights),
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Reenact renders one frame per encoding frame, sized like the face crop.
func (c *Client) Reenact(ctx context.Context, face media.Frame, seq encoding.Sequence, fn func(media.Frame) error) error {
	if err := face.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "gannotation", "reenact", "", err)
	}
	if seq.Len() == 0 {
		return services.Wrap(services.ErrValidation, "gannotation", "reenact",
			"empty landmark sequence", nil)
	}

	workDir, err := os.MkdirTemp("", "fakebench-gann-")
	if err != nil {
		return fmt.Errorf("create generator work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	facePath := filepath.Join(workDir, "face.png")
	if err := imaging.Save(face.Image(), facePath); err != nil {
		return fmt.Errorf("write face image: %w", err)
	}
	encodingPath := filepath.Join(workDir, "encoding.txt")
	if err := writeSequence(encodingPath, seq); err != nil {
		return fmt.Errorf("write landmark sequence: %w", err)
	}

	args := make([]string, 0, 8)
	if c.weights != "" {
		args = append(args, "--weights", c.weights)
	}
	args = append(args,
		"--image", facePath,
		"--encoding", encodingPath,
		"--size", strconv.Itoa(face.Width),
	)

	frameBytes := face.Width * face.Height * 3
	produced := 0
	var sinkErr error
	runErr := c.exec.Run(ctx, c.command, args, func(stdout io.Reader) error {
		buf := make([]byte, frameBytes)
		for {
			if _, err := io.ReadFull(stdout, buf); err != nil {
				if err == io.EOF {
					break
				}
				if err == io.ErrUnexpectedEOF {
					return fmt.Errorf("truncated frame after %d frames", produced)
				}
				return err
			}
			frame := media.NewFrame(face.Width, face.Height)
			copy(frame.Pix, buf)
			produced++
			if err := fn(frame); err != nil {
				sinkErr = err
				return err
			}
		}
		if produced != seq.Len() {
			return fmt.Errorf("generator produced %d frames, want %d", produced, seq.Len())
		}
		return nil
	})
	if sinkErr != nil {
		return sinkErr
	}
	if runErr != nil {
		return services.Wrap(services.ErrExternalTool, "gannotation", "reenact", "", runErr)
	}
	return nil
}

func writeSequence(path string, seq encoding.Sequence) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encoding.Write(file, seq); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type commandExecutor struct{}

// Run starts the generator and hands its stdout to onStdout. An error from
// onStdout kills the process and is returned unchanged; a process failure
// is reported with the captured stderr tail.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(io.Reader) error) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	if err := onStdout(stdout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", binary, err, msg)
		}
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}
