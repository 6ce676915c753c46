package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevCBH/specfix/internal/artifact"
	"github.com/RevCBH/specfix/internal/diff"
)

// DiffOptions holds flags for the diff command
type DiffOptions struct {
	Stat bool // Print only added/removed/hunk counts
}

// NewDiffCmd creates the diff command
func NewDiffCmd(app *App) *cobra.Command {
	var opts DiffOptions

	cmd := &cobra.Command{
		Use:   "diff <original> <final>",
		Short: "Print the unified diff between two specs",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunDiff(args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Stat, "stat", false, "Print only change counts")

	return cmd
}

// RunDiff prints the diff between the files at originalPath and finalPath
func (a *App) RunDiff(originalPath, finalPath string, opts DiffOptions) error {
	original, err := readInput(originalPath)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	final, err := readInput(finalPath)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	if opts.Stat {
		stats := diff.Compute(original, final)
		fmt.Fprintf(a.stdout, "+%d -%d in %s\n", stats.Added, stats.Removed, plural(stats.Hunks, "hunk"))
		return nil
	}

	out := diff.Unified(original, final)
	fmt.Fprint(a.stdout, out)
	if out == diff.NoChanges {
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", artifact.ErrLoad, path, err)
	}
	return string(data), nil
}
