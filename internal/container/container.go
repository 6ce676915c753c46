// Package container runs the linter from a container image through the
// docker or podman CLI.
package container

import (
	"fmt"
	"slices"
)

// ContainerConfig specifies a one-shot container run.
type ContainerConfig struct {
	// Image is the container image (e.g., "stoplight/spectral:6")
	Image string

	// Name is the container name; empty lets the runtime pick one
	Name string

	// Entrypoint overrides the image entrypoint when set
	Entrypoint string

	// Env contains environment variables to set in the container
	Env map[string]string

	// Mounts are bind mounts from the host
	Mounts []Mount

	// Cmd is the command and arguments to run
	Cmd []string

	// WorkDir is the working directory inside the container
	WorkDir string
}

// Mount is a host directory bound into the container at the same path
// unless Target is set.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

func (m Mount) String() string {
	target := m.Target
	if target == "" {
		target = m.Source
	}
	s := m.Source + ":" + target
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// RunArgs builds the `<runtime> run` arguments for cfg.
// The container is removed when it exits.
func (cfg ContainerConfig) RunArgs() []string {
	args := []string{"run", "--rm"}
	if cfg.Name != "" {
		args = append(args, "--name", cfg.Name)
	}

	// Sorted for stable command lines
	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, cfg.Env[k]))
	}

	for _, m := range cfg.Mounts {
		args = append(args, "-v", m.String())
	}

	if cfg.WorkDir != "" {
		args = append(args, "-w", cfg.WorkDir)
	}
	if cfg.Entrypoint != "" {
		args = append(args, "--entrypoint", cfg.Entrypoint)
	}

	// Image and command come last
	args = append(args, cfg.Image)
	args = append(args, cfg.Cmd...)
	return args
}
