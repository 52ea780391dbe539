package main

import (
	"log/slog"
	"os"
	"time"

	"fakebench/internal/config"
	"fakebench/internal/logging"
	"fakebench/internal/runlog"
)

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// openRunLedger opens the run history store. A broken ledger degrades to nil
// rather than blocking dataset work; the pipeline records best effort.
func openRunLedger(cfg *config.Config, logger *slog.Logger) *runlog.Store {
	store, err := runlog.Open(cfg)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return nil
	}
	return store
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
