package artifact

import (
	"github.com/RevCBH/specfix/internal/repair"
)

// Defaults for Outputs
const (
	DefaultOutput    = "corrected_api_spec.yaml"
	DefaultChangelog = "changelog.txt"
)

// Outputs names where a run's artifacts go. Empty optional paths are skipped.
type Outputs struct {
	Output          string
	Changelog       string
	CandidateOutput string
	Report          string

	// SpecPath is recorded in the report
	SpecPath string
}

// Written lists the files Persist produced
type Written struct {
	Output    string
	Changelog string
	Candidate string
	Report    string
}

// Persist writes the artifacts for a finished session.
//
// A PASSED run writes the validated document and its changelog. An
// EXHAUSTED run never writes the validated output path; it writes an
// exhausted changelog and, when requested, the last candidate. A cancelled
// run writes only the report.
func (o Outputs) Persist(s *repair.Session) (Written, error) {
	var w Written

	switch s.Outcome {
	case repair.StatePassed:
		if err := WriteFile(o.Output, s.Final); err != nil {
			return w, err
		}
		w.Output = o.Output
		if err := WriteFile(o.Changelog, Changelog(s.Original, s.Final)); err != nil {
			return w, err
		}
		w.Changelog = o.Changelog

	case repair.StateExhausted:
		if err := WriteFile(o.Changelog, ExhaustedChangelog(s.Attempts, s.Original, s.Final)); err != nil {
			return w, err
		}
		w.Changelog = o.Changelog
		if o.CandidateOutput != "" {
			if err := WriteFile(o.CandidateOutput, Candidate(o.CandidateOutput, s.Final)); err != nil {
				return w, err
			}
			w.Candidate = o.CandidateOutput
		}
	}

	if o.Report != "" {
		if err := WriteReport(o.Report, NewReport(o.SpecPath, s)); err != nil {
			return w, err
		}
		w.Report = o.Report
	}
	return w, nil
}
