package oracle

import (
	"fmt"
	"net/http"
	"time"
)

// Provider names accepted by FromConfig
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultTimeout bounds one Correct call, retries included
const DefaultTimeout = 5 * time.Minute

// Config selects and configures an oracle backend
type Config struct {
	// Provider is "openai" (default) or "anthropic"
	Provider string

	Model   string
	BaseURL string

	// APIKey is the resolved credential, never the env var name
	APIKey string

	// Timeout bounds one Correct call including retries (default: 5m)
	Timeout time.Duration

	Retry RetryConfig

	// MaxTokens caps the response length (0 leaves the provider default)
	MaxTokens int64

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// FromConfig creates an Oracle for cfg.Provider.
// Returns an error for unknown providers or a missing credential.
func FromConfig(cfg Config) (Oracle, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		o, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		return o, nil
	case ProviderAnthropic:
		a, err := NewAnthropic(cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider: %s", cfg.Provider)
	}
}
