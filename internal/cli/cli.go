// Package cli wires configuration, the linter, the oracle and the repair loop
// into the specfix command line.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevCBH/specfix/internal/lint"
)

// VersionInfo holds build-time version details
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Persistent flags
	verbose    bool
	configPath string

	// Working directory used to find .specfix.yaml (default: os.Getwd)
	workDir string

	stdout io.Writer
	stderr io.Writer

	// runner executes the linter (nil uses lint.OSRunner)
	runner lint.Runner

	versionInfo VersionInfo
}

// New creates a new CLI application
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// SetArgs overrides os.Args[1:], for tests
func (a *App) SetArgs(args []string) {
	a.rootCmd.SetArgs(args)
}

// SetOutput redirects command output, for tests
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.stdout = stdout
	a.stderr = stderr
	a.rootCmd.SetOut(stdout)
	a.rootCmd.SetErr(stderr)
}

// SetWorkDir sets the directory searched for .specfix.yaml
func (a *App) SetWorkDir(dir string) {
	a.workDir = dir
}

func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "specfix",
		Short: "Repair API specs until they pass a lint ruleset",
		Long: `specfix lints an API specification against a Spectral ruleset and asks a
language model to correct it, repeating until the linter passes or the
iteration budget is spent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output (debug logs and raw linter/model output)")
	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default: ./.specfix.yaml when present)")

	a.rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	a.rootCmd.AddCommand(
		NewFixCmd(a),
		NewLintCmd(a),
		NewDiffCmd(a),
		NewHistoryCmd(a),
		NewVersionCmd(a),
	)
}

func (a *App) dir() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	return os.Getwd()
}
