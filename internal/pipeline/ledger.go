package pipeline

import (
	"context"
	"log/slog"

	"fakebench/internal/logging"
	"fakebench/internal/runlog"
)

// runRecorder writes run ledger rows best effort. Ledger problems are
// logged, never fatal: losing bookkeeping must not fail a batch.
type runRecorder struct {
	store  *runlog.Store
	logger *slog.Logger
}

func (r runRecorder) begin(ctx context.Context, command, root string) string {
	if r.store == nil {
		return ""
	}
	runID, err := r.store.BeginRun(ctx, command, root)
	if err != nil {
		r.logger.Warn("failed to open run ledger entry", logging.Error(err))
		return ""
	}
	return runID
}

func (r runRecorder) finish(runID string, total Stats, interrupted bool) {
	if r.store == nil || runID == "" {
		return
	}
	// Finalized on a fresh context so an interrupt still lands in the ledger.
	err := r.store.FinishRun(context.Background(), runID, total.Processed, total.Skipped, total.Failed, interrupted)
	if err != nil {
		r.logger.Warn("failed to finalize run ledger entry", logging.Error(err))
	}
}

func (r runRecorder) record(ctx context.Context, runID, phase, item string, outcome runlog.Outcome, detail string) {
	if r.store == nil || runID == "" {
		return
	}
	if err := r.store.RecordItem(ctx, runID, phase, item, outcome, detail); err != nil {
		r.logger.Warn("failed to record run item",
			logging.String("item", item),
			logging.Error(err))
	}
}
