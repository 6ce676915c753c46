package config

const (
	DefaultLintCommand   = "spectral"
	DefaultFailSeverity  = "error"
	DefaultLintTimeout   = "2m"
	DefaultLintImage     = "stoplight/spectral:6"
	DefaultProvider      = "openai"
	DefaultAPIKeyEnv     = "OPENROUTER_API_KEY"
	DefaultOracleTimeout = "5m"
	DefaultOracleRetries = 2
	DefaultMaxIterations = 5
	DefaultSpec          = "api_spec.yaml"
	DefaultRuleset       = "ruleset.yaml"
	DefaultOutput        = "corrected_api_spec.yaml"
	DefaultChangelog     = "changelog.txt"
	DefaultLogLevel      = "info"
)

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Lint: LintConfig{
			Command:      DefaultLintCommand,
			FailSeverity: DefaultFailSeverity,
			Timeout:      DefaultLintTimeout,
			Container: ContainerConfig{
				Image: DefaultLintImage,
			},
		},
		Oracle: OracleConfig{
			Provider:  DefaultProvider,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultOracleTimeout,
			Retries:   DefaultOracleRetries,
		},
		Repair: RepairConfig{
			MaxIterations: DefaultMaxIterations,
		},
		Output: OutputConfig{
			Spec:      DefaultSpec,
			Ruleset:   DefaultRuleset,
			Output:    DefaultOutput,
			Changelog: DefaultChangelog,
		},
		LogLevel: DefaultLogLevel,
	}
}
