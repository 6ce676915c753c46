package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/RevCBH/specfix/internal/lint"
)

// exitRuntimeError is what docker and podman exit with when the container
// could not be created or started
const exitRuntimeError = 125

// LintRunner is a lint.Runner that executes the linter inside a container.
// The working directory and the directories of any existing files named on
// the command line are bind-mounted read-only at their host paths.
type LintRunner struct {
	runtime string
	image   string
	workDir string
	host    lint.Runner
}

// NewLintRunner wraps host, which runs the runtime binary itself.
// A nil host uses lint.OSRunner.
func NewLintRunner(runtime, image, workDir string, host lint.Runner) *LintRunner {
	if host == nil {
		host = lint.OSRunner{}
	}
	return &LintRunner{runtime: runtime, image: image, workDir: workDir, host: host}
}

// Runtime returns the container runtime binary
func (r *LintRunner) Runtime() string {
	return r.runtime
}

// Run executes `name args...` as the entrypoint of the linter image.
func (r *LintRunner) Run(ctx context.Context, name string, args ...string) (lint.Output, error) {
	cfg := ContainerConfig{
		Image:      r.image,
		Entrypoint: name,
		Mounts:     r.mounts(args),
		Cmd:        args,
		WorkDir:    r.workDir,
	}

	out, err := r.host.Run(ctx, r.runtime, cfg.RunArgs()...)
	if err != nil {
		return out, err
	}
	if out.ExitCode == exitRuntimeError {
		return out, fmt.Errorf("%s run %s: %s", r.runtime, r.image, strings.TrimSpace(out.Stderr))
	}
	return out, nil
}

func (r *LintRunner) mounts(args []string) []Mount {
	var dirs []string
	for _, arg := range args {
		if !filepath.IsAbs(arg) {
			continue
		}
		if _, err := os.Stat(arg); err != nil {
			continue
		}
		dir := filepath.Dir(arg)
		if r.workDir != "" && within(r.workDir, dir) {
			continue
		}
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	mounts := make([]Mount, 0, len(dirs)+1)
	if r.workDir != "" {
		mounts = append(mounts, Mount{Source: r.workDir, ReadOnly: true})
	}
	for _, d := range dirs {
		mounts = append(mounts, Mount{Source: d, ReadOnly: true})
	}
	return mounts
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
