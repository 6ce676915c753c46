package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevCBH/specfix/internal/repair"
)

// Process exit codes
const (
	ExitOK        = 0
	ExitFatal     = 1
	ExitUsage     = 2
	ExitInvalid   = 3 // document did not validate
	ExitCancelled = 130
)

// ExitError carries a process exit code alongside the error
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, repair.ErrExhausted):
		return ExitInvalid
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	default:
		return ExitFatal
	}
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// usageArgs wraps a cobra positional-args validator so violations exit 2
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// runError classifies the error from a repair run
func runError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repair.ErrExhausted):
		return &ExitError{Code: ExitInvalid, Err: err}
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitCancelled, Err: fmt.Errorf("repair cancelled: %w", err)}
	default:
		return &ExitError{Code: ExitFatal, Err: err}
	}
}
