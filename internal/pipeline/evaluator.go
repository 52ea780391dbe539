package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fakebench/internal/artifact"
	"fakebench/internal/classifier"
	"fakebench/internal/logging"
	"fakebench/internal/report"
	"fakebench/internal/runlog"
	"fakebench/internal/services"
)

const phaseTransfer = "transfer"

// EvaluateRequest names the inputs of one transfer evaluation batch.
type EvaluateRequest struct {
	DataDir    string
	ModelsDir  string
	MType      string
	OutputFile string
	BatchSize  int
}

// Evaluator scores every transferred model of one architecture against all
// manipulation classes and appends the recall rows to a CSV report.
type Evaluator struct {
	registry *classifier.Registry
	ledger   runRecorder
	logger   *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// NewEvaluator wires an evaluation driver. store may be nil, in which case
// no ledger rows are written.
func NewEvaluator(registry *classifier.Registry, store *runlog.Store, logger *slog.Logger, streams IO) *Evaluator {
	streams = streams.withDefaults()
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "evaluate")
	return &Evaluator{
		registry: registry,
		ledger:   runRecorder{store: store, logger: logger},
		logger:   logger,
		stdout:   streams.Stdout,
		stderr:   streams.Stderr,
	}
}

// Run evaluates every transferred model under {models}/{mtype} against each
// manipulation class directory and appends one recall row per model to the
// CSV report. Models with missing weights are skipped with a diagnostic;
// scoring failures are reported and the batch continues.
func (e *Evaluator) Run(ctx context.Context, req EvaluateRequest) (Stats, error) {
	var stats Stats

	arch, factory, err := e.registry.Lookup(req.MType)
	if err != nil {
		return stats, services.NewExitError(2, fmt.Errorf("ERROR: %q is not a valid model type", req.MType))
	}

	fmt.Fprintf(e.stdout, "Testing transferred models for %s\n", strings.ToUpper(string(arch)))
	fmt.Fprintf(e.stdout, "Loading models from %q\n", req.ModelsDir)
	fmt.Fprintf(e.stdout, "Outputting to %q\n", req.OutputFile)
	fmt.Fprintf(e.stdout, "Batch size: %d\n", req.BatchSize)

	writer, err := report.NewWriter(req.OutputFile)
	if err != nil {
		return stats, services.NewExitError(2, fmt.Errorf("ERROR: %v", err))
	}
	defer writer.Close()

	fmt.Fprint(e.stdout, "\nChecking class directories...\n")
	for _, class := range report.Classes {
		dir := filepath.Join(req.DataDir, class)
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return stats, fmt.Errorf("class directory %q not found in %q", class, req.DataDir)
		}
	}

	mtypeDir := filepath.Join(req.ModelsDir, strings.ToLower(string(arch)))
	if fi, err := os.Stat(mtypeDir); err != nil || !fi.IsDir() {
		return stats, services.NewExitError(1, fmt.Errorf("ERROR: No directory found for model type %q in %q", req.MType, req.ModelsDir))
	}

	runID := e.ledger.begin(ctx, "evaluate", req.ModelsDir)
	defer func() {
		e.ledger.finish(runID, stats, ctx.Err() != nil)
	}()

	transfers, malformed, err := classifier.Transfers(mtypeDir)
	if err != nil {
		return stats, fmt.Errorf("enumerating transferred models: %w", err)
	}
	for i := range malformed {
		e.logger.Warn("skipping unrecognized model directory",
			logging.String("name", malformed[i].Name),
			logging.String("reason", malformed[i].Reason))
		stats.Skipped++
		e.ledger.record(ctx, runID, phaseTransfer, malformed[i].Name, runlog.OutcomeSkipped, malformed[i].Reason)
	}

	for _, transfer := range transfers {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		name := transfer.Name()
		weights := filepath.Join(mtypeDir, name, "best.hdf5")
		if !artifact.Exists(weights) {
			fmt.Fprintf(e.stderr, "ERROR: File %q does not exist. Skipping.\n", weights)
			stats.Skipped++
			e.ledger.record(ctx, runID, phaseTransfer, name, runlog.OutcomeSkipped, "weights missing")
			continue
		}

		fmt.Fprintf(e.stdout, "\nTesting model %q...\n", name)

		recalls, err := e.scoreModel(ctx, factory(), weights, req)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if !services.IsItemRecoverable(err) {
				return stats, err
			}
			fmt.Fprintf(e.stderr, "ERROR: Failed to evaluate model %q: %v\n", name, err)
			e.logger.Warn("model evaluation failed",
				logging.String("model", name),
				logging.Error(err))
			stats.Failed++
			e.ledger.record(ctx, runID, phaseTransfer, name, runlog.OutcomeFailed, err.Error())
			continue
		}

		row := report.Row{
			MType:      string(arch),
			OrigClass:  transfer.OrigClass,
			TransClass: transfer.TransClass,
			Recalls:    recalls,
		}
		if err := writer.Append(row); err != nil {
			return stats, fmt.Errorf("appending report row for %s: %w", name, err)
		}
		e.logger.Info("model evaluated", logging.String("model", name))
		stats.Processed++
		e.ledger.record(ctx, runID, phaseTransfer, name, runlog.OutcomeProcessed, "")
	}

	return stats, nil
}

func (e *Evaluator) scoreModel(ctx context.Context, model classifier.Model, weights string, req EvaluateRequest) (map[string]float64, error) {
	if err := model.Load(weights); err != nil {
		return nil, err
	}
	recalls := make(map[string]float64, len(report.Classes))
	for _, class := range report.Classes {
		recall, err := model.EvaluateRecall(ctx, filepath.Join(req.DataDir, class), req.BatchSize)
		if err != nil {
			return nil, err
		}
		recalls[class] = recall
	}
	return recalls, nil
}
