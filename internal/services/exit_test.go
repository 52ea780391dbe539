package services_test

import (
	"errors"
	"fmt"
	"testing"

	"fakebench/internal/services"
)

func TestExitErrorMessageAndUnwrap(t *testing.T) {
	base := fmt.Errorf("%w: gpu-fraction must be between 0.0 and 1.0", services.ErrValidation)
	err := services.NewExitError(2, base)

	if got := err.Error(); got != base.Error() {
		t.Fatalf("Error() = %q, want %q", got, base.Error())
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatal("expected wrapped marker to survive")
	}
}

func TestExitCode(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", services.NewExitError(1, errors.New("boom")))

	code, ok := services.ExitCode(wrapped)
	if !ok || code != 1 {
		t.Fatalf("ExitCode = %d, %v, want 1, true", code, ok)
	}

	if _, ok := services.ExitCode(errors.New("plain")); ok {
		t.Fatal("plain error should carry no exit status")
	}
}
