package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/testutil"
)

func TestRunArgs(t *testing.T) {
	cfg := ContainerConfig{
		Image:      "stoplight/spectral:6",
		Name:       "lint-1",
		Entrypoint: "spectral",
		Env:        map[string]string{"NO_COLOR": "1", "A": "b"},
		Mounts:     []Mount{{Source: "/work", ReadOnly: true}, {Source: "/tmp/x", Target: "/x"}},
		WorkDir:    "/work",
		Cmd:        []string{"lint", "api.yaml"},
	}

	assert.Equal(t, []string{
		"run", "--rm", "--name", "lint-1",
		"-e", "A=b", "-e", "NO_COLOR=1",
		"-v", "/work:/work:ro", "-v", "/tmp/x:/x",
		"-w", "/work",
		"--entrypoint", "spectral",
		"stoplight/spectral:6", "lint", "api.yaml",
	}, cfg.RunArgs())
}

func TestLintRunner_MountsStagedFiles(t *testing.T) {
	work := t.TempDir()
	staging := t.TempDir()
	staged := filepath.Join(staging, "specfix-1.yaml")
	require.NoError(t, os.WriteFile(staged, []byte("openapi: 3.0.0\n"), 0o644))
	ruleset := filepath.Join(work, "rules", "ruleset.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(ruleset), 0o755))
	require.NoError(t, os.WriteFile(ruleset, []byte("extends: spectral:oas\n"), 0o644))

	host := testutil.NewStubRunner()
	host.StubExit(1, "error")

	r := NewLintRunner("podman", "stoplight/spectral:6", work, host)
	out, err := r.Run(context.Background(), "spectral",
		"lint", staged, "--ruleset", ruleset, "--fail-severity", "error")
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)

	calls := host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "podman", calls[0].Name)
	assert.Equal(t, []string{
		"run", "--rm",
		"-v", work + ":" + work + ":ro",
		"-v", staging + ":" + staging + ":ro",
		"-w", work,
		"--entrypoint", "spectral",
		"stoplight/spectral:6",
		"lint", staged, "--ruleset", ruleset, "--fail-severity", "error",
	}, calls[0].Args)
}

func TestLintRunner_RuntimeFailure(t *testing.T) {
	host := testutil.NewStubRunner()
	host.Stub(lint.Output{ExitCode: exitRuntimeError, Stderr: "Unable to find image\n"}, nil)

	r := NewLintRunner("docker", "missing:latest", "", host)
	_, err := r.Run(context.Background(), "spectral", "lint", "api.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker run missing:latest: Unable to find image")
}

func TestLintRunner_HostError(t *testing.T) {
	host := testutil.NewStubRunner()
	host.Stub(lint.Output{ExitCode: -1}, context.DeadlineExceeded)

	r := NewLintRunner("docker", "stoplight/spectral:6", "", host)
	_, err := r.Run(context.Background(), "spectral", "lint", "api.yaml")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLintRunner_WithValidator(t *testing.T) {
	host := testutil.NewStubRunner()
	host.StubExit(0, "")

	v := lint.New(lint.Config{Timeout: 0}, NewLintRunner("docker", "stoplight/spectral:6", t.TempDir(), host))
	result := v.Validate(context.Background(), "openapi: 3.0.0\n", lint.Ruleset{Path: "ruleset.yaml"})

	assert.True(t, result.Passed)
	calls := host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "docker", calls[0].Name)
	assert.Contains(t, calls[0].Args, "--entrypoint")
	assert.Contains(t, calls[0].Args, "spectral")
}
