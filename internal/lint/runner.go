package lint

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for pipes after the process is killed
const waitDelay = 2 * time.Second

// Output is what a linter process produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes linter commands.
//
// A non-zero exit is reported through Output.ExitCode with a nil error.
// An error is returned only when the process could not be run to completion
// (binary missing, context expired).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// OSRunner executes real commands via exec.CommandContext.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return out, nil
	}

	// A killed process also surfaces as an ExitError, so check the context first
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	out.ExitCode = -1
	return out, err
}
