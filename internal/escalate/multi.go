package escalate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Multi wraps multiple escalators and fans out to all of them
type Multi struct {
	escalators []Escalator
}

// NewMulti creates a Multi escalator that sends to all provided backends
func NewMulti(escalators ...Escalator) *Multi {
	return &Multi{escalators: escalators}
}

// Escalate sends the escalation to all backends concurrently.
// Every backend is attempted; failures are joined and tagged with the
// backend name.
func (m *Multi) Escalate(ctx context.Context, e Escalation) error {
	var g errgroup.Group
	errs := make([]error, len(m.escalators))
	for i, esc := range m.escalators {
		g.Go(func() error {
			if err := esc.Escalate(ctx, e); err != nil {
				errs[i] = fmt.Errorf("%s: %w", esc.Name(), err)
				return errs[i]
			}
			return nil
		})
	}
	// Wait reports only the first failure; the joined set covers every backend
	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

// Name returns "multi"
func (m *Multi) Name() string {
	return "multi"
}
