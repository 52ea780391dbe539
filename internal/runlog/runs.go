package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BeginRun records the start of a command invocation and returns its run ID.
func (s *Store) BeginRun(ctx context.Context, command, root string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, command, root, started_at) VALUES (?, ?, ?, ?)`,
		id, command, root, now,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordItem appends one work item outcome to a run.
func (s *Store) RecordItem(ctx context.Context, runID, phase, item string, outcome Outcome, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO run_items (run_id, phase, item, outcome, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, phase, item, string(outcome), nullableString(detail), now,
	); err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}
	return nil
}

// FinishRun closes a run with its final counters. Interrupted runs record
// their partial counts the same way.
func (s *Store) FinishRun(ctx context.Context, runID string, processed, skipped, failed int, interrupted bool) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, skipped = ?, failed = ?, interrupted = ?
         WHERE id = ?`,
		now, processed, skipped, failed, boolToInt(interrupted), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// RecentRuns returns runs newest first. A positive limit caps the result;
// failedOnly restricts it to runs that recorded failures.
func (s *Store) RecentRuns(ctx context.Context, limit int, failedOnly bool) ([]Run, error) {
	query := `SELECT id, command, root, started_at, finished_at, interrupted,
                 processed, skipped, failed FROM runs`
	if failedOnly {
		query += ` WHERE failed > 0`
	}
	query += ` ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ItemsForRun lists the recorded outcomes of one run in insertion order.
func (s *Store) ItemsForRun(ctx context.Context, runID string) ([]ItemRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT run_id, phase, item, outcome, detail, recorded_at
         FROM run_items WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var (
			item       ItemRecord
			outcome    string
			detail     sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&item.RunID, &item.Phase, &item.Item, &outcome, &detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Outcome = Outcome(outcome)
		item.Detail = detail.String
		if item.RecordedAt, err = parseTimestamp(recordedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run items: %w", err)
	}
	return items, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run         Run
		startedAt   string
		finishedAt  sql.NullString
		interrupted int
	)
	if err := rows.Scan(&run.ID, &run.Command, &run.Root, &startedAt, &finishedAt,
		&interrupted, &run.Processed, &run.Skipped, &run.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return Run{}, err
	}
	if finishedAt.Valid {
		ts, err := parseTimestamp(finishedAt.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &ts
	}
	run.Interrupted = interrupted != 0
	return run, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse ledger timestamp %q: %w", value, err)
	}
	return ts, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
