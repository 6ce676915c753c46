// Package artifact loads run inputs and persists run outputs.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RevCBH/specfix/internal/diff"
	"github.com/RevCBH/specfix/internal/lint"
)

// ErrLoad indicates an input file could not be read. It is fatal.
var ErrLoad = errors.New("failed to load input")

// Inputs are the files a run starts from
type Inputs struct {
	SpecPath string
	Spec     string
	Ruleset  lint.Ruleset
}

// Load reads the spec and ruleset files
func Load(specPath, rulesetPath string) (*Inputs, error) {
	spec, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("%w: spec %s: %w", ErrLoad, specPath, err)
	}
	rules, err := os.ReadFile(rulesetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: ruleset %s: %w", ErrLoad, rulesetPath, err)
	}

	absRules, err := filepath.Abs(rulesetPath)
	if err != nil {
		absRules = rulesetPath
	}

	return &Inputs{
		SpecPath: specPath,
		Spec:     string(spec),
		Ruleset:  lint.Ruleset{Path: absRules, Content: string(rules)},
	}, nil
}

// Extension returns the spec file extension the linter should see,
// falling back to .yaml
func (in *Inputs) Extension() string {
	switch ext := strings.ToLower(filepath.Ext(in.SpecPath)); ext {
	case ".yaml", ".yml", ".json":
		return ext
	default:
		return lint.DefaultExtension
	}
}

// WriteFile writes content to path, creating parent directories.
// Existing files are overwritten.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Changelog renders the changelog for a converged run
func Changelog(original, final string) string {
	d := diff.Unified(original, final)
	if d == diff.NoChanges {
		return "Final diff: " + diff.NoChanges + "\n\n"
	}
	return "Final diff:\n" + d + "\n\n"
}

// ExhaustedChangelog renders the changelog for a run that did not converge.
// The diff shows the last unvalidated candidate.
func ExhaustedChangelog(attempts int, original, candidate string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation did not converge after %d attempts.\n", attempts)
	b.WriteString("The diff below is against the last candidate, which did NOT pass validation.\n\n")
	b.WriteString(Changelog(original, candidate))
	return b.String()
}

// CandidateHeader is prepended to a persisted unvalidated candidate
const CandidateHeader = "# UNVALIDATED CANDIDATE: this document did not pass linting.\n"

// Candidate renders the last candidate of an exhausted run for persistence.
// JSON documents cannot carry a comment, so they are written as-is.
func Candidate(path, document string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return document
	}
	return CandidateHeader + document
}
