package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/RevCBH/specfix/internal/config"
	"github.com/RevCBH/specfix/internal/container"
	"github.com/RevCBH/specfix/internal/escalate"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/oracle"
)

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	dir, err := a.dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadConfig(ctx, dir, a.configPath)
}

// newValidator builds the linter adapter. ext is the staged file suffix.
// With lint.container.runtime set the linter runs from the configured image,
// with dir mounted as its working directory.
func newValidator(cfg *config.Config, ext, dir string, runner lint.Runner) (*lint.Validator, error) {
	timeout, err := cfg.LintTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid lint timeout: %w", err)
	}

	if c := cfg.Lint.Container; c.Runtime != "" {
		runtime, err := container.DetectRuntime(c.Runtime)
		if err != nil {
			return nil, err
		}
		runner = container.NewLintRunner(runtime, c.Image, dir, runner)
	}

	return lint.New(lint.Config{
		Command:      cfg.Lint.Command,
		FailSeverity: cfg.Lint.FailSeverity,
		Timeout:      timeout,
		ExtraArgs:    cfg.Lint.ExtraArgs,
		StagingDir:   cfg.Lint.StagingDir,
		Extension:    ext,
	}, runner), nil
}

// newOracle builds the configured correction backend
func newOracle(cfg *config.Config) (oracle.Oracle, error) {
	timeout, err := cfg.OracleTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid oracle timeout: %w", err)
	}

	retry := oracle.DefaultRetryConfig()
	retry.MaxRetries = cfg.Oracle.Retries

	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", oracle.ErrMissingAPIKey, cfg.Oracle.APIKeyEnv)
	}

	return oracle.FromConfig(oracle.Config{
		Provider:  cfg.Oracle.Provider,
		Model:     cfg.Oracle.Model,
		BaseURL:   cfg.Oracle.BaseURL,
		APIKey:    apiKey,
		Timeout:   timeout,
		Retry:     retry,
		MaxTokens: cfg.Oracle.MaxTokens,
	})
}

// newEscalator builds the notifier used when a run does not converge
func newEscalator(cfg *config.Config, terminal io.Writer) (escalate.Escalator, error) {
	return escalate.FromConfig(escalate.Config{
		Backends:       cfg.Escalation.Backends,
		SlackWebhook:   cfg.Escalation.SlackWebhook,
		WebhookURL:     cfg.Escalation.WebhookURL,
		TerminalWriter: terminal,
	})
}
