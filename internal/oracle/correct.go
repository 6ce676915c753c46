package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

// reply is what a backend extracted from one response
type reply struct {
	Content   string
	Reasoning string
}

// completeFunc sends one system+user exchange to a backend
type completeFunc func(ctx context.Context, system, user string) (reply, error)

// correct runs one correction through complete, applying the timeout and
// retry policy and tagging the result. It never returns an error.
func correct(ctx context.Context, name string, timeout time.Duration, retry RetryConfig, complete completeFunc, req Request) Correction {
	start := time.Now()
	log := clog.FromContext(ctx).With("oracle", name)

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	prompt := BuildPrompt(req)
	r, attempts, err := retryWithBackoff(callCtx, retry, func(ctx context.Context) (reply, error) {
		return complete(ctx, SystemPrompt, prompt)
	})

	c := Correction{
		Document: req.Document,
		Attempts: attempts,
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			c.Status = StatusTimeout
			c.Err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
		} else {
			c.Status = StatusFailed
			c.Err = err
		}
		log.Warnf("Oracle call failed, keeping current document: %v", c.Err)
		c.Duration = time.Since(start)
		return c
	}

	c.Raw = r.Content
	text := strings.TrimSpace(r.Content)
	c.Status = StatusCorrected
	if text == "" {
		c.Raw = r.Reasoning
		text = strings.TrimSpace(r.Reasoning)
		c.Status = StatusReasoningFallback
	}
	log.Debugf("Oracle raw response (%s):\n%s", c.Status, c.Raw)

	switch {
	case text == "":
		c.Status = StatusFailed
		c.Err = ErrEmptyResponse
	case text == strings.TrimSpace(req.Document):
		c.Status = StatusUnchanged
	default:
		c.Document = text
	}
	c.Duration = time.Since(start)
	return c
}
