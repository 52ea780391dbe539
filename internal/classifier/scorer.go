package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"fakebench/internal/services"
)

var commandContext = exec.CommandContext

// Scorer evaluates classifier weights through the external scorer command.
// The command receives the architecture, weights file, class directory, and
// tuning flags, and reports the recall as JSON on stdout.
type Scorer struct {
	command     string
	arch        Arch
	gpuFraction float64
	weights     string
}

// NewScorer constructs a scorer for one architecture.
func NewScorer(command string, arch Arch, gpuFraction float64) *Scorer {
	return &Scorer{command: command, arch: arch, gpuFraction: gpuFraction}
}

// Load records the weights file for subsequent evaluations.
func (s *Scorer) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "classifier", "load weights", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "classifier", "load weights",
			path+" is a directory", nil)
	}
	s.weights = path
	return nil
}

// EvaluateRecall runs the scorer over one class directory.
func (s *Scorer) EvaluateRecall(ctx context.Context, classDir string, batchSize int) (float64, error) {
	if s.weights == "" {
		return 0, services.Wrap(services.ErrValidation, "classifier", "evaluate",
			"no weights loaded", nil)
	}
	if batchSize <= 0 {
		return 0, services.Wrap(services.ErrValidation, "classifier", "evaluate",
			"batch size must be positive", nil)
	}

	cmd := commandContext(ctx, s.command,
		"--arch", string(s.arch),
		"--weights", s.weights,
		"--data", classDir,
		"--batch-size", strconv.Itoa(batchSize),
		"--gpu-fraction", strconv.FormatFloat(s.gpuFraction, 'g', -1, 64),
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "classifier", "evaluate",
			scorerStderr(err), err)
	}

	var result struct {
		Recall *float64 `json:"recall"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "classifier", "evaluate",
			"malformed scorer output", err)
	}
	if result.Recall == nil {
		return 0, services.Wrap(services.ErrExternalTool, "classifier", "evaluate",
			"scorer output missing recall", nil)
	}
	recall := *result.Recall
	if recall < 0 || recall > 1 {
		return 0, services.Wrap(services.ErrExternalTool, "classifier", "evaluate",
			fmt.Sprintf("recall %v out of range", recall), nil)
	}
	return recall, nil
}

func scorerStderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
			return msg
		}
	}
	return ""
}
