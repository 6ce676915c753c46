package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

var (
	validSeverities = []string{"error", "warn", "info", "hint"}
	validProviders  = []string{"openai", "anthropic"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validBackends   = []string{"terminal", "slack", "webhook"}
	validRuntimes   = []string{"", "auto", "docker", "podman"}
)

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error
	add := func(field string, value any, msg string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
	}

	if cfg.Lint.Command == "" {
		add("lint.command", cfg.Lint.Command, "must not be empty")
	}
	if !slices.Contains(validSeverities, cfg.Lint.FailSeverity) {
		add("lint.fail_severity", cfg.Lint.FailSeverity, "must be one of error, warn, info, hint")
	}
	validatePositiveDuration(&errs, "lint.timeout", cfg.Lint.Timeout)
	if !slices.Contains(validRuntimes, cfg.Lint.Container.Runtime) {
		add("lint.container.runtime", cfg.Lint.Container.Runtime, "must be one of auto, docker, podman")
	}
	if cfg.Lint.Container.Runtime != "" && cfg.Lint.Container.Image == "" {
		add("lint.container.image", cfg.Lint.Container.Image, "must not be empty when a runtime is set")
	}

	if !slices.Contains(validProviders, cfg.Oracle.Provider) {
		add("oracle.provider", cfg.Oracle.Provider, "must be 'openai' or 'anthropic'")
	}
	if cfg.Oracle.APIKeyEnv == "" {
		add("oracle.api_key_env", cfg.Oracle.APIKeyEnv, "must name an environment variable")
	}
	validatePositiveDuration(&errs, "oracle.timeout", cfg.Oracle.Timeout)
	if cfg.Oracle.Retries < 0 {
		add("oracle.retries", cfg.Oracle.Retries, "must be non-negative")
	}
	if cfg.Oracle.MaxTokens < 0 {
		add("oracle.max_tokens", cfg.Oracle.MaxTokens, "must be non-negative (0 = provider default)")
	}

	if cfg.Repair.MaxIterations < 1 {
		add("repair.max_iterations", cfg.Repair.MaxIterations, "must be at least 1")
	}

	if cfg.Output.Output == "" {
		add("output.output", cfg.Output.Output, "must not be empty")
	}
	if cfg.Output.Changelog == "" {
		add("output.changelog", cfg.Output.Changelog, "must not be empty")
	}

	for _, b := range cfg.Escalation.Backends {
		if !slices.Contains(validBackends, b) {
			add("escalation.backends", b, "must be terminal, slack or webhook")
		}
	}
	if slices.Contains(cfg.Escalation.Backends, "slack") && cfg.Escalation.SlackWebhook == "" {
		add("escalation.slack_webhook", "", "required when the slack backend is enabled")
	}
	if slices.Contains(cfg.Escalation.Backends, "webhook") && cfg.Escalation.WebhookURL == "" {
		add("escalation.webhook_url", "", "required when the webhook backend is enabled")
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		add("log_level", cfg.LogLevel, "must be one of debug, info, warn, error")
	}

	return errors.Join(errs...)
}

func validatePositiveDuration(errs *[]error, field, value string) {
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, &ValidationError{Field: field, Value: value, Message: "must be a valid duration"})
		return
	}
	if d <= 0 {
		*errs = append(*errs, &ValidationError{Field: field, Value: value, Message: "must be positive"})
	}
}
