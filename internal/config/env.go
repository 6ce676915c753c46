package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// envOverrides lists the environment variables that override file values.
// Unset or empty variables leave the config untouched.
type envOverrides struct {
	LintCommand    string `env:"SPECFIX_LINT_CMD"`
	LintTimeout    string `env:"SPECFIX_LINT_TIMEOUT"`
	OracleProvider string `env:"SPECFIX_ORACLE_PROVIDER"`
	Model          string `env:"SPECFIX_MODEL"`
	BaseURL        string `env:"SPECFIX_BASE_URL"`
	OracleTimeout  string `env:"SPECFIX_ORACLE_TIMEOUT"`
	MaxIterations  int    `env:"SPECFIX_MAX_ITERATIONS"`
	LogLevel       string `env:"SPECFIX_LOG_LEVEL"`
	Listen         string `env:"SPECFIX_LISTEN"`
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return err
	}

	setString(&cfg.Lint.Command, env.LintCommand)
	setString(&cfg.Lint.Timeout, env.LintTimeout)
	setString(&cfg.Oracle.Provider, env.OracleProvider)
	setString(&cfg.Oracle.Model, env.Model)
	setString(&cfg.Oracle.BaseURL, env.BaseURL)
	setString(&cfg.Oracle.Timeout, env.OracleTimeout)
	setString(&cfg.LogLevel, env.LogLevel)
	setString(&cfg.Monitor.Listen, env.Listen)
	if env.MaxIterations != 0 {
		cfg.Repair.MaxIterations = env.MaxIterations
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
