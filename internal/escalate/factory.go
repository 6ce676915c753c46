package escalate

import (
	"fmt"
	"io"
	"os"
)

// Backend names accepted in Config.Backends
const (
	BackendTerminal = "terminal"
	BackendSlack    = "slack"
	BackendWebhook  = "webhook"
)

// Config holds escalation configuration
type Config struct {
	Backends     []string
	SlackWebhook string
	WebhookURL   string

	// TerminalWriter receives terminal escalations (default: os.Stderr)
	TerminalWriter io.Writer
}

// FromConfig creates an Escalator from configuration.
// No backends means terminal only.
func FromConfig(cfg Config) (Escalator, error) {
	if cfg.TerminalWriter == nil {
		cfg.TerminalWriter = os.Stderr
	}

	var escalators []Escalator

	for _, backend := range cfg.Backends {
		switch backend {
		case BackendTerminal:
			escalators = append(escalators, NewTerminalWriter(cfg.TerminalWriter))
		case BackendSlack:
			if cfg.SlackWebhook == "" {
				return nil, fmt.Errorf("slack backend requires webhook URL")
			}
			escalators = append(escalators, NewSlack(cfg.SlackWebhook))
		case BackendWebhook:
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook backend requires URL")
			}
			escalators = append(escalators, NewWebhook(cfg.WebhookURL))
		default:
			return nil, fmt.Errorf("unknown escalation backend: %s", backend)
		}
	}

	switch len(escalators) {
	case 0:
		return NewTerminalWriter(cfg.TerminalWriter), nil
	case 1:
		return escalators[0], nil
	default:
		return NewMulti(escalators...), nil
	}
}
