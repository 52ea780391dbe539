package services

import "errors"

// ExitError carries a process exit status alongside the failure message.
// The command layer prints the message verbatim to stderr and exits with
// the code, matching the contract scripted callers depend on.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError wraps err with an exit status.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit status from err. The second return is false
// when err carries no explicit status.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
