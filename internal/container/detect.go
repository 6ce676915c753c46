package container

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoRuntime is returned when no container runtime is found.
var ErrNoRuntime = errors.New("no container runtime found (need docker or podman)")

// lookPath is replaced in tests
var lookPath = exec.LookPath

// DetectRuntime resolves the configured runtime. "auto" (or empty) checks
// docker first, then podman; a named runtime must be on PATH.
func DetectRuntime(preferred string) (string, error) {
	switch preferred {
	case "", "auto":
	default:
		if _, err := lookPath(preferred); err != nil {
			return "", fmt.Errorf("%w: %s not on PATH", ErrNoRuntime, preferred)
		}
		return preferred, nil
	}

	for _, bin := range []string{"docker", "podman"} {
		if _, err := lookPath(bin); err == nil {
			return bin, nil
		}
	}
	return "", ErrNoRuntime
}
