package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/RevCBH/specfix/internal/artifact"
	"github.com/RevCBH/specfix/internal/config"
	"github.com/RevCBH/specfix/internal/escalate"
	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/history"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/metrics"
	"github.com/RevCBH/specfix/internal/repair"
	"github.com/RevCBH/specfix/internal/web"
)

const monitorShutdownTimeout = 5 * time.Second

// FixOptions holds flags for the fix command.
// Empty values fall back to the config file.
type FixOptions struct {
	Spec            string
	Ruleset         string
	Output          string
	Changelog       string
	CandidateOutput string
	Report          string
	MetricsFile     string
	History         string // SQLite run history database
	Listen          string // Live monitor HTTP address
	MaxIterations   int
	NoTUI           bool // Disable TUI even when stdout is a TTY
	JSON            bool // Emit events as JSON lines on stdout
}

// Validate checks FixOptions for validity
func (opts FixOptions) Validate() error {
	if opts.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", opts.MaxIterations)
	}
	if opts.Spec == "" {
		return fmt.Errorf("spec path must not be empty")
	}
	if opts.Ruleset == "" {
		return fmt.Errorf("ruleset path must not be empty")
	}
	if opts.Output == "" || opts.Changelog == "" {
		return fmt.Errorf("output and changelog paths must not be empty")
	}
	if opts.Output == opts.Spec {
		return fmt.Errorf("output must not overwrite the input spec %s", opts.Spec)
	}
	return nil
}

// resolve fills unset options from cfg
func (opts *FixOptions) resolve(cfg *config.Config) {
	setDefault(&opts.Spec, cfg.Output.Spec)
	setDefault(&opts.Ruleset, cfg.Output.Ruleset)
	setDefault(&opts.Output, cfg.Output.Output)
	setDefault(&opts.Changelog, cfg.Output.Changelog)
	setDefault(&opts.CandidateOutput, cfg.Output.CandidateOutput)
	setDefault(&opts.Report, cfg.Output.Report)
	setDefault(&opts.MetricsFile, cfg.Output.MetricsFile)
	setDefault(&opts.History, cfg.Output.History)
	setDefault(&opts.Listen, cfg.Monitor.Listen)
	if opts.MaxIterations == 0 {
		opts.MaxIterations = cfg.Repair.MaxIterations
	}
}

func setDefault(v *string, fallback string) {
	if *v == "" {
		*v = fallback
	}
}

// NewFixCmd creates the fix command
func NewFixCmd(app *App) *cobra.Command {
	var opts FixOptions

	cmd := &cobra.Command{
		Use:   "fix [spec]",
		Short: "Lint a spec and correct it until it passes",
		Long: `Fix validates the spec against the ruleset. While the linter reports errors
the spec, ruleset and diagnostics are sent to the configured model and the
corrected spec is validated again, up to --max-iterations validations.

A spec that passes is written to --output with a unified diff in --changelog.
When the budget is spent no validated output is written and the command
exits 3; the changelog then shows the last unvalidated candidate.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Spec = args[0]
			}
			return app.RunFix(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Ruleset, "ruleset", "r", "", "Ruleset file (default: ruleset.yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Validated spec output (default: corrected_api_spec.yaml)")
	cmd.Flags().StringVar(&opts.Changelog, "changelog", "", "Changelog output (default: changelog.txt)")
	cmd.Flags().StringVar(&opts.CandidateOutput, "candidate-output", "", "Write the last unvalidated candidate here when repair does not converge")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write a YAML run report")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format")
	cmd.Flags().StringVar(&opts.History, "history", "", "Record the run in this SQLite history database")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Serve run state, events and metrics over HTTP on this address")
	cmd.Flags().IntVarP(&opts.MaxIterations, "max-iterations", "n", 0, "Validation budget (default: 5)")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable interactive TUI")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit run events as JSON lines on stdout")

	return cmd
}

// RunFix executes one repair run and persists its artifacts
func (a *App) RunFix(ctx context.Context, opts FixOptions) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("failed to load config: %w", err)}
	}
	opts.resolve(cfg)
	if err := opts.Validate(); err != nil {
		return usageError(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx = withLogger(ctx, a.stderr, cfg.LogLevel, a.verbose)
	log := clog.FromContext(ctx)

	inputs, err := artifact.Load(opts.Spec, opts.Ruleset)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	log.Debugf("Loaded spec %s:\n%s", inputs.SpecPath, inputs.Spec)
	log.Debugf("Loaded ruleset %s:\n%s", inputs.Ruleset.Path, inputs.Ruleset.Content)

	dir, err := a.dir()
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	validator, err := newValidator(cfg, inputs.Extension(), dir, a.runner)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	orc, err := newOracle(cfg)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	esc, err := newEscalator(cfg, a.stderr)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	bus := events.NewBus(0)
	defer bus.Close()

	recorder := metrics.NewRecorder()
	bus.Subscribe(recorder.Handler())

	useTUI := !opts.NoTUI && !opts.JSON && a.isTerminal()
	switch {
	case opts.JSON:
		bus.Subscribe(events.JSONEmitterHandler(ctx, events.NewJSONEmitter(a.stdout)))
	case useTUI:
	case a.verbose:
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: a.stderr, IncludePayload: true}))
	default:
		bus.Subscribe(events.Filter(events.LogHandler(events.LogConfig{Writer: a.stderr}),
			repair.OracleFailed))
	}

	var view *liveView
	if useTUI {
		view = startLiveView(a.stdout, a.stderr, opts.Spec, opts.MaxIterations, cancel)
		defer view.Stop()
		bus.Subscribe(view.bridge.Handler())
		ctx = withLogger(ctx, view.logs, cfg.LogLevel, a.verbose)
	}

	var hist *history.DB
	if opts.History != "" {
		hist, err = history.Open(opts.History)
		if err != nil {
			clog.FromContext(ctx).Warnf("Run history disabled: %v", err)
		} else {
			defer hist.Close()
			bus.Subscribe(hist.Handler(ctx, opts.Spec))
		}
	}

	var monitor *web.Server
	if opts.Listen != "" {
		monitor = web.New(web.Config{Addr: opts.Listen, Subject: opts.Spec, Gatherer: recorder.Registry()})
		if err := monitor.Start(ctx); err != nil {
			return &ExitError{Code: ExitFatal, Err: fmt.Errorf("failed to start monitor: %w", err)}
		}
		clog.FromContext(ctx).Infof("Monitoring run at http://%s/api/state", monitor.Addr())
		bus.Subscribe(monitor.Handler())
	}

	signals := NewSignalHandler(ctx, cancel)
	signals.Start()
	defer signals.Stop()

	loop := repair.New(repair.Config{MaxIterations: opts.MaxIterations}, validator, orc, bus)
	session, runErr := loop.Run(ctx, inputs.Spec, inputs.Ruleset)

	// Drain subscribers before reading metrics and tearing down the view
	_ = bus.Close()
	if view != nil {
		view.Stop()
		ctx = withLogger(ctx, a.stderr, cfg.LogLevel, a.verbose)
		log = clog.FromContext(ctx)
	}

	if monitor != nil {
		stopCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), monitorShutdownTimeout)
		if err := monitor.Stop(stopCtx); err != nil {
			log.Warnf("Monitor shutdown: %v", err)
		}
		stop()
	}

	if hist != nil {
		if err := hist.FinishRun(opts.Spec, session, runErr); err != nil {
			log.Warnf("Failed to record run history: %v", err)
		}
	}

	outputs := artifact.Outputs{
		Output:          opts.Output,
		Changelog:       opts.Changelog,
		CandidateOutput: opts.CandidateOutput,
		Report:          opts.Report,
		SpecPath:        opts.Spec,
	}
	written, err := outputs.Persist(session)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("failed to write outputs: %w", err)}
	}
	if written.Output != "" {
		log.Infof("Corrected spec saved to %s", written.Output)
	}
	if written.Changelog != "" {
		log.Infof("Changelog saved to %s", written.Changelog)
	}

	if opts.MetricsFile != "" {
		if err := recorder.WriteTextfile(opts.MetricsFile); err != nil {
			log.Warnf("Failed to write metrics: %v", err)
		}
	}

	if errors.Is(runErr, repair.ErrExhausted) {
		if err := esc.Escalate(ctx, exhaustedEscalation(opts.Spec, session, written)); err != nil {
			log.Warnf("Escalation via %s failed: %v", esc.Name(), err)
		}
	}

	if !opts.JSON {
		fmt.Fprint(a.stdout, RenderSummary(session, written))
	}

	return runError(runErr)
}

// exhaustedEscalation describes a run that spent its budget
func exhaustedEscalation(specPath string, s *repair.Session, written artifact.Written) escalate.Escalation {
	e := escalate.Escalation{
		Severity: escalate.SeverityCritical,
		Subject:  specPath,
		Title:    fmt.Sprintf("Spec did not pass lint after %d attempts", s.Attempts),
		Context: map[string]string{
			"run_id":   s.RunID,
			"attempts": strconv.Itoa(s.Attempts),
		},
	}

	if last := s.Last(); last != nil {
		e.Context["lint_errors"] = strconv.Itoa(lint.CountBlocking(last.Lint.Findings()))
		e.Message = strings.TrimSpace(last.Lint.Diagnostics)
	}
	if written.Changelog != "" {
		e.Context["changelog"] = written.Changelog
	}
	if written.Candidate != "" {
		e.Context["candidate"] = written.Candidate
	}
	return e
}

func (a *App) isTerminal() bool {
	f, ok := a.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
