package lint

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic is a single rule violation reported by the linter.
type Diagnostic struct {
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Severity string `json:"severity" yaml:"severity"`
	Code     string `json:"code" yaml:"code"`
	Message  string `json:"message" yaml:"message"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Severity levels emitted by Spectral's stylish formatter
const (
	SeverityError       = "error"
	SeverityWarning     = "warning"
	SeverityInformation = "information"
	SeverityHint        = "hint"
)

// line:col  severity  code  message  [path]
var stylishLine = regexp.MustCompile(`^\s*(\d+):(\d+)\s+(error|warning|information|info|hint)\s+(\S+)\s+(.+?)(?:\s{2,}(\S+))?\s*$`)

// ParseDiagnostics extracts diagnostics from stylish-formatted linter output.
// Lines that do not look like a diagnostic (file headers, summaries) are skipped.
func ParseDiagnostics(text string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(text, "\n") {
		m := stylishLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		diags = append(diags, Diagnostic{
			Line:     lineNo,
			Column:   col,
			Severity: m[3],
			Code:     m[4],
			Message:  m[5],
			Path:     m[6],
		})
	}
	return diags
}

// CountBlocking returns the number of error-severity diagnostics.
func CountBlocking(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}
