package cli

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/RevCBH/specfix/internal/artifact"
)

// LintOptions holds flags for the lint command
type LintOptions struct {
	Spec    string
	Ruleset string
}

// NewLintCmd creates the lint command
func NewLintCmd(app *App) *cobra.Command {
	var opts LintOptions

	cmd := &cobra.Command{
		Use:   "lint [spec]",
		Short: "Validate a spec once without correcting it",
		Long: `Lint runs the configured linter against the spec and ruleset and prints the
diagnostics. It exits 0 when the spec passes and 3 when it does not.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Spec = args[0]
			}
			return app.RunLint(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Ruleset, "ruleset", "r", "", "Ruleset file (default: ruleset.yaml)")

	return cmd
}

// RunLint validates a spec once
func (a *App) RunLint(ctx context.Context, opts LintOptions) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("failed to load config: %w", err)}
	}
	setDefault(&opts.Spec, cfg.Output.Spec)
	setDefault(&opts.Ruleset, cfg.Output.Ruleset)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = withLogger(ctx, a.stderr, cfg.LogLevel, a.verbose)

	signals := NewSignalHandler(ctx, cancel)
	signals.Start()
	defer signals.Stop()

	inputs, err := artifact.Load(opts.Spec, opts.Ruleset)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	dir, err := a.dir()
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	validator, err := newValidator(cfg, inputs.Extension(), dir, a.runner)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	result := validator.Validate(ctx, inputs.Spec, inputs.Ruleset)
	if result.Stderr != "" {
		clog.FromContext(ctx).Debugf("Linter stderr:\n%s", result.Stderr)
	}

	fmt.Fprint(a.stdout, RenderLintResult(opts.Spec, result))

	if err := ctx.Err(); err != nil {
		return runError(err)
	}
	if !result.Passed {
		err := result.Err
		if err == nil {
			err = fmt.Errorf("%s did not pass validation", opts.Spec)
		}
		return &ExitError{Code: ExitInvalid, Err: err}
	}
	return nil
}
