package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fakebench/internal/runlog"
	"fakebench/internal/textutil"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recorded pipeline runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()

			store, err := runlog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return renderRunItems(cmd, store, args[0])
			}
			return renderRunList(cmd, store, limit, failedOnly)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to display")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show runs that recorded failures")
	return cmd
}

func renderRunList(cmd *cobra.Command, store *runlog.Store, limit int, failedOnly bool) error {
	runs, err := store.RecentRuns(cmd.Context(), limit, failedOnly)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = formatRunTime(*run.FinishedAt)
		}
		rows = append(rows, []string{
			shortRunID(run.ID),
			run.Command,
			run.Root,
			formatRunTime(run.StartedAt),
			finished,
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			yesNo(run.Interrupted),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Command", "Root", "Started", "Finished", "Processed", "Skipped", "Failed", "Interrupted"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func renderRunItems(cmd *cobra.Command, store *runlog.Store, token string) error {
	runID, err := resolveRunID(cmd.Context(), store, token)
	if err != nil {
		return err
	}

	items, err := store.ItemsForRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list run items: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "No items recorded for run %s\n", runID)
		return nil
	}

	title := cases.Title(language.English)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		detail := textutil.Truncate(textutil.CollapseWhitespace(item.Detail), 64)
		rows = append(rows, []string{
			item.Phase,
			item.Item,
			title.String(string(item.Outcome)),
			detail,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Phase", "Item", "Outcome", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

// resolveRunID accepts a full run id or any unambiguous prefix, so the
// truncated ids shown by the list view can be pasted back in.
func resolveRunID(ctx context.Context, store *runlog.Store, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("run id is required")
	}

	runs, err := store.RecentRuns(ctx, 0, false)
	if err != nil {
		return "", fmt.Errorf("list runs: %w", err)
	}

	var matches []string
	for _, run := range runs {
		if run.ID == token {
			return run.ID, nil
		}
		if strings.HasPrefix(run.ID, token) {
			matches = append(matches, run.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no run matching %q", token)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous (%d matches)", token, len(matches))
	}
}
