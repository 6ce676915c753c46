package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ResultKind classifies how a validation run ended
type ResultKind string

const (
	KindPassed    ResultKind = "passed"
	KindFailed    ResultKind = "failed"
	KindToolError ResultKind = "tool_error"
	KindTimeout   ResultKind = "timeout"
)

// Defaults for Config
const (
	DefaultCommand      = "spectral"
	DefaultFailSeverity = "error"
	DefaultTimeout      = 2 * time.Minute
	DefaultExtension    = ".yaml"
)

// Ruleset is the rule definition file the linter enforces.
// Path is handed to the linter, Content is what the oracle reads.
type Ruleset struct {
	Path    string
	Content string
}

// Result is the outcome of a single validation run
type Result struct {
	// Passed is true when the linter exited 0
	Passed bool

	// ExitCode is the linter exit status (1 for staging/start failures, -1 for timeouts)
	ExitCode int

	// Diagnostics is the warning-filtered stdout. This is what the oracle sees.
	Diagnostics string

	// Stderr is the warning-filtered stderr, reported but never sent to the oracle
	Stderr string

	Kind     ResultKind
	Err      error
	Duration time.Duration
}

// Findings parses Diagnostics into structured entries
func (r Result) Findings() []Diagnostic {
	return ParseDiagnostics(r.Diagnostics)
}

// Config configures the Validator
type Config struct {
	// Command is the linter binary (default: "spectral")
	Command string

	// FailSeverity is passed as --fail-severity (default: "error")
	FailSeverity string

	// Timeout bounds each linter invocation (default: 2m)
	Timeout time.Duration

	// ExtraArgs are appended after the standard arguments
	ExtraArgs []string

	// StagingDir is where the temporary document copy is written (default: os.TempDir())
	StagingDir string

	// Extension is the staged file suffix, so the linter detects the format (default: ".yaml")
	Extension string
}

// Validator runs the external linter against candidate documents
type Validator struct {
	cfg    Config
	runner Runner
}

// New creates a Validator. A nil runner uses OSRunner.
func New(cfg Config, runner Runner) *Validator {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.FailSeverity == "" {
		cfg.FailSeverity = DefaultFailSeverity
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if runner == nil {
		runner = OSRunner{}
	}
	return &Validator{cfg: cfg, runner: runner}
}

// Command returns the configured linter binary
func (v *Validator) Command() string {
	return v.cfg.Command
}

// Validate lints document against ruleset.
//
// The document is staged in a uniquely named temporary file that is removed
// before Validate returns. Failures to stage or start the linter are reported
// as a failed Result rather than an error so the caller can keep iterating.
func (v *Validator) Validate(ctx context.Context, document string, ruleset Ruleset) Result {
	start := time.Now()

	path, cleanup, err := v.stage(document)
	if err != nil {
		return toolError(&StagingError{Err: err}, time.Since(start))
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	out, err := v.runner.Run(runCtx, v.cfg.Command, v.args(path, ruleset.Path)...)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return Result{
				Passed:      false,
				ExitCode:    -1,
				Diagnostics: fmt.Sprintf("%s did not finish within %s", v.cfg.Command, v.cfg.Timeout),
				Stderr:      FilterWarnings(out.Stderr),
				Kind:        KindTimeout,
				Err:         fmt.Errorf("%w after %s", ErrTimeout, v.cfg.Timeout),
				Duration:    duration,
			}
		}
		return toolError(fmt.Errorf("run %s: %w", v.cfg.Command, err), duration)
	}

	result := Result{
		Passed:      out.ExitCode == 0,
		ExitCode:    out.ExitCode,
		Diagnostics: FilterWarnings(out.Stdout),
		Stderr:      FilterWarnings(out.Stderr),
		Kind:        KindFailed,
		Duration:    duration,
	}
	if result.Passed {
		result.Kind = KindPassed
	}
	return result
}

// args builds: lint <doc> --ruleset <rules> --fail-severity <sev> [extra...]
func (v *Validator) args(docPath, rulesetPath string) []string {
	args := make([]string, 0, 6+len(v.cfg.ExtraArgs))
	args = append(args, "lint", docPath)
	if rulesetPath != "" {
		args = append(args, "--ruleset", rulesetPath)
	}
	args = append(args, "--fail-severity", v.cfg.FailSeverity)
	args = append(args, v.cfg.ExtraArgs...)
	return args
}

func (v *Validator) stage(document string) (string, func(), error) {
	f, err := os.CreateTemp(v.cfg.StagingDir, "specfix-*"+v.cfg.Extension)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.WriteString(document); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func toolError(err error, duration time.Duration) Result {
	return Result{
		Passed:      false,
		ExitCode:    1,
		Diagnostics: err.Error(),
		Kind:        KindToolError,
		Err:         err,
		Duration:    duration,
	}
}
