package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fakebench/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, newRootCommand(), os.Stdout, os.Stderr))
}

// run executes the CLI and maps failures to process exit codes. An interrupt
// prints the termination notice and exits zero because all partial work has
// already been cleaned up by then; typed exit errors carry their own code;
// anything else exits one.
func run(ctx context.Context, cmd *cobra.Command, stdout, stderr io.Writer) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stdout, "Program terminated prematurely")
		return 0
	}
	fmt.Fprintln(stderr, err)
	if code, ok := services.ExitCode(err); ok {
		return code
	}
	return 1
}
