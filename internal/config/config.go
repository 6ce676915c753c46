package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory
const FileName = ".specfix.yaml"

// Config holds all configuration for specfix.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Lint controls the external linter
	Lint LintConfig `yaml:"lint"`

	// Oracle controls the correction model backend
	Oracle OracleConfig `yaml:"oracle"`

	// Repair controls the convergence loop
	Repair RepairConfig `yaml:"repair"`

	// Output names input and output files
	Output OutputConfig `yaml:"output"`

	// Escalation configures who is notified when a run does not converge
	Escalation EscalationConfig `yaml:"escalation"`

	// Monitor serves live run state over HTTP while fix runs
	Monitor MonitorConfig `yaml:"monitor"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// LintConfig controls linter invocation.
type LintConfig struct {
	// Command is the path or name of the linter binary
	Command string `yaml:"command"`

	// FailSeverity is the lowest severity that fails validation
	FailSeverity string `yaml:"fail_severity"`

	// Timeout bounds a single linter run (Go duration string)
	Timeout string `yaml:"timeout"`

	// ExtraArgs are appended to every linter invocation
	ExtraArgs []string `yaml:"extra_args,omitempty"`

	// StagingDir holds the temporary candidate copies (default: system temp dir)
	StagingDir string `yaml:"staging_dir,omitempty"`

	// Container runs the linter from an image instead of a host binary
	Container ContainerConfig `yaml:"container"`
}

// ContainerConfig selects a container runtime for the linter.
type ContainerConfig struct {
	// Runtime is "docker", "podman" or "auto"; empty runs the host binary
	Runtime string `yaml:"runtime,omitempty"`

	// Image is the linter image (default: stoplight/spectral:6)
	Image string `yaml:"image,omitempty"`
}

// OracleConfig controls the correction model.
type OracleConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the provider's default endpoint
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKeyEnv names the environment variable holding the credential
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds one correction including retries (Go duration string)
	Timeout string `yaml:"timeout"`

	// Retries is how many times transient failures are retried
	Retries int `yaml:"retries"`

	// MaxTokens caps the response length (0 = provider default)
	MaxTokens int64 `yaml:"max_tokens,omitempty"`
}

// RepairConfig controls the convergence loop.
type RepairConfig struct {
	// MaxIterations is the validation budget per run
	MaxIterations int `yaml:"max_iterations"`
}

// OutputConfig names the files a run reads and writes.
type OutputConfig struct {
	Spec            string `yaml:"spec"`
	Ruleset         string `yaml:"ruleset"`
	Output          string `yaml:"output"`
	Changelog       string `yaml:"changelog"`
	CandidateOutput string `yaml:"candidate_output,omitempty"`
	Report          string `yaml:"report,omitempty"`
	MetricsFile     string `yaml:"metrics_file,omitempty"`
	History         string `yaml:"history,omitempty"`
}

// MonitorConfig controls the live run monitor.
type MonitorConfig struct {
	// Listen is the HTTP address; empty disables the monitor
	Listen string `yaml:"listen,omitempty"`
}

// EscalationConfig selects notification backends.
type EscalationConfig struct {
	// Backends lists "terminal", "slack" and/or "webhook" (default: terminal)
	Backends     []string `yaml:"backends,omitempty"`
	SlackWebhook string   `yaml:"slack_webhook,omitempty"`
	WebhookURL   string   `yaml:"webhook_url,omitempty"`
}

// LintTimeoutDuration parses the lint timeout as a Duration.
func (c *Config) LintTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Lint.Timeout)
}

// OracleTimeoutDuration parses the oracle timeout as a Duration.
func (c *Config) OracleTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Oracle.Timeout)
}

// APIKey resolves the oracle credential from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(c.Oracle.APIKeyEnv)
}

// LoadConfig loads configuration for a run in dir.
// It applies defaults, then file values, then environment overrides,
// then validates.
//
// An explicit path must exist. Without one, dir/.specfix.yaml is used when
// present; a missing file means defaults.
func LoadConfig(ctx context.Context, dir, path string) (*Config, error) {
	return loadConfig(ctx, dir, path, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, dir, path string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnvOverrides(ctx, cfg, lookuper); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
