// Package diff renders the changes between the original and final document.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// NoChanges is returned by Unified when the documents are identical
const NoChanges = "No changes were made from the original spec."

// Labels used in the unified diff headers
const (
	FromLabel = "Original Spec"
	ToLabel   = "Final Spec"
)

// contextLines is the number of unchanged lines around each hunk
const contextLines = 3

// Unified returns a unified diff from original to final, or NoChanges when
// they are identical. Output is deterministic for a given input pair.
func Unified(original, final string) string {
	if original == final {
		return NoChanges
	}

	// Writes go to an in-memory buffer and cannot fail
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(original),
		B:        splitLines(final),
		FromFile: FromLabel,
		ToFile:   ToLabel,
		Context:  contextLines,
	})
	return text
}

// Stats summarizes a diff
type Stats struct {
	Added   int `json:"added" yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
	Hunks   int `json:"hunks" yaml:"hunks"`
}

// Changed reports whether any line differs
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// Compute counts added and removed lines and hunks between original and final
func Compute(original, final string) Stats {
	var s Stats
	if original == final {
		return s
	}

	m := difflib.NewMatcher(splitLines(original), splitLines(final))
	for _, group := range m.GetGroupedOpCodes(contextLines) {
		s.Hunks++
		for _, op := range group {
			switch op.Tag {
			case 'r':
				s.Removed += op.I2 - op.I1
				s.Added += op.J2 - op.J1
			case 'd':
				s.Removed += op.I2 - op.I1
			case 'i':
				s.Added += op.J2 - op.J1
			}
		}
	}
	return s
}

// noNewline marks a final line that lacks a line ending, as diff(1) does
const noNewline = "\n\\ No newline at end of file\n"

// splitLines splits s keeping line endings. A final line without a newline
// carries the noNewline marker, so a trailing-newline change is still a diff.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += noNewline
	return lines
}
