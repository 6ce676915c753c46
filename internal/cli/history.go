package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/RevCBH/specfix/internal/history"
)

// HistoryOptions holds flags for the history command
type HistoryOptions struct {
	DB    string
	Spec  string
	Limit int
	RunID string
}

// NewHistoryCmd creates the history command
func NewHistoryCmd(app *App) *cobra.Command {
	var opts HistoryOptions

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded repair runs",
		Long: `History lists runs recorded by fix --history, newest first. Given a run ID
it shows that run's iterations and event log.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.RunID = args[0]
			}
			return app.RunHistory(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "History database (default: output.history from config)")
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Only list runs for this spec")
	cmd.Flags().IntVar(&opts.Limit, "limit", history.DefaultListLimit, "Maximum runs to list")

	return cmd
}

// RunHistory prints recorded runs or the detail of one run
func (a *App) RunHistory(ctx context.Context, opts HistoryOptions) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("failed to load config: %w", err)}
	}
	setDefault(&opts.DB, cfg.Output.History)
	if opts.DB == "" {
		return usageError(errors.New("no history database: pass --db or set output.history"))
	}
	if _, err := os.Stat(opts.DB); err != nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("history database %s: %w", opts.DB, err)}
	}

	db, err := history.Open(opts.DB)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	defer db.Close()

	if opts.RunID == "" {
		runs, err := db.ListRuns(opts.Spec, opts.Limit)
		if err != nil {
			return &ExitError{Code: ExitFatal, Err: err}
		}
		if len(runs) == 0 {
			fmt.Fprintln(a.stdout, "No runs recorded")
			return nil
		}
		displayRuns(a.stdout, runs)
		return nil
	}

	run, err := db.GetRun(opts.RunID)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	if run == nil {
		return &ExitError{Code: ExitFatal, Err: fmt.Errorf("run %s not found", opts.RunID)}
	}
	iterations, err := db.ListIterations(run.ID)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	records, err := db.ListEvents(run.ID)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	displayRun(a.stdout, run, iterations, records)
	return nil
}

// newTable returns a left-aligned markdown-style table with headers kept as written
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// displayRuns renders runs as a table.
// Columns: ID, Outcome, Attempts, Spec, Started, Took
func displayRuns(out io.Writer, runs []*history.RunRecord) {
	table := newTable(out, "ID", "OUTCOME", "ATTEMPTS", "SPEC", "STARTED", "TOOK")
	for _, r := range runs {
		_ = table.Append([]string{
			r.ID,
			r.Outcome,
			fmt.Sprintf("%d/%d", r.Attempts, r.MaxIterations),
			r.SpecPath,
			r.StartedAt.Local().Format(time.DateTime),
			took(r),
		})
	}
	_ = table.Render()
}

func displayRun(out io.Writer, run *history.RunRecord, iterations []*history.IterationRecord, records []*history.EventRecord) {
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  spec:      %s\n", run.SpecPath)
	fmt.Fprintf(out, "  outcome:   %s after %s\n", run.Outcome, plural(run.Attempts, "attempt"))
	if run.Validator != nil || run.Oracle != nil {
		fmt.Fprintf(out, "  tools:     %s / %s\n", deref(run.Validator), deref(run.Oracle))
	}
	fmt.Fprintf(out, "  started:   %s (%s)\n", run.StartedAt.Local().Format(time.DateTime), took(run))
	if run.Error != nil {
		fmt.Fprintf(out, "  error:     %s\n", *run.Error)
	}

	if len(iterations) > 0 {
		fmt.Fprintln(out)
		table := newTable(out, "#", "LINT", "ERRORS", "LINT TIME", "ORACLE", "ORACLE TIME")
		for _, it := range iterations {
			oracleStatus, oracleTime := "-", "-"
			if it.OracleStatus != nil {
				oracleStatus = *it.OracleStatus
				oracleTime = it.OracleTook.String()
			}
			_ = table.Append([]string{
				strconv.Itoa(it.Number), it.LintKind, strconv.Itoa(it.Errors),
				it.LintTook.String(), oracleStatus, oracleTime,
			})
		}
		_ = table.Render()
	}

	if len(records) > 0 {
		fmt.Fprintln(out)
		for _, e := range records {
			line := fmt.Sprintf("[%s] %3d %s", e.CreatedAt.Local().Format(time.TimeOnly), e.Sequence, e.EventType)
			if e.Iteration != nil {
				line += fmt.Sprintf(" #%d", *e.Iteration)
			}
			if e.Error != nil {
				line += " - " + *e.Error
			}
			fmt.Fprintln(out, line)
		}
	}
}

func took(r *history.RunRecord) string {
	if r.FinishedAt == nil {
		return "unfinished"
	}
	return r.Duration().Round(time.Millisecond).String()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
