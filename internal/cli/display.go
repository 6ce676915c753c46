package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/RevCBH/specfix/internal/artifact"
	"github.com/RevCBH/specfix/internal/diff"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/repair"
)

// StatusSymbol marks an outcome in summaries
type StatusSymbol string

const (
	SymbolPassed    StatusSymbol = "✓"
	SymbolFailed    StatusSymbol = "✗"
	SymbolCancelled StatusSymbol = "○"
)

var (
	passedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle  = lipgloss.NewStyle().Width(12)
)

// RenderSummary formats the end-of-run report printed after fix
func RenderSummary(s *repair.Session, written artifact.Written) string {
	var b strings.Builder

	b.WriteString(summaryHeadline(s))
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "  %s%s\n", labelStyle.Render(label+":"), value)
	}

	field("run", mutedStyle.Render(s.RunID))
	field("oracle", plural(s.OracleCalls(), "call"))

	if last := s.Last(); last != nil && !last.Lint.Passed {
		field("last lint", fmt.Sprintf("%s, %s", last.Lint.Kind,
			plural(lint.CountBlocking(last.Lint.Findings()), "error")))
	}

	stats := diff.Compute(s.Original, s.Final)
	if stats.Changed() {
		field("diff", fmt.Sprintf("+%d -%d in %s", stats.Added, stats.Removed, plural(stats.Hunks, "hunk")))
	} else {
		field("diff", "no changes")
	}

	if written.Output != "" {
		field("output", written.Output)
	} else if s.Outcome == repair.StateExhausted {
		field("output", failedStyle.Render("not written, no candidate validated"))
	}
	if written.Candidate != "" {
		field("candidate", written.Candidate+mutedStyle.Render(" (unvalidated)"))
	}
	if written.Changelog != "" {
		field("changelog", written.Changelog)
	}
	if written.Report != "" {
		field("report", written.Report)
	}

	return b.String()
}

func summaryHeadline(s *repair.Session) string {
	took := mutedStyle.Render(fmt.Sprintf("(%s)", s.Duration().Round(time.Millisecond)))

	switch s.Outcome {
	case repair.StatePassed:
		if s.Attempts == 1 {
			return fmt.Sprintf("%s %s %s",
				passedStyle.Render(string(SymbolPassed)),
				passedStyle.Render("Spec already valid, no changes done"), took)
		}
		return fmt.Sprintf("%s %s %s",
			passedStyle.Render(string(SymbolPassed)),
			passedStyle.Render(fmt.Sprintf("Spec validated after %s", plural(s.Attempts, "attempt"))), took)
	case repair.StateExhausted:
		return fmt.Sprintf("%s %s %s",
			failedStyle.Render(string(SymbolFailed)),
			failedStyle.Render(fmt.Sprintf("Validation did not converge after %s", plural(s.Attempts, "attempt"))), took)
	default:
		return fmt.Sprintf("%s %s %s",
			mutedStyle.Render(string(SymbolCancelled)),
			mutedStyle.Render(fmt.Sprintf("Repair %s after %s", s.Outcome, plural(s.Attempts, "attempt"))), took)
	}
}

// RenderLintResult formats a single validation for the lint command
func RenderLintResult(path string, r lint.Result) string {
	var b strings.Builder

	if r.Passed {
		fmt.Fprintf(&b, "%s %s %s\n",
			passedStyle.Render(string(SymbolPassed)), path,
			mutedStyle.Render(fmt.Sprintf("passed (%s)", r.Duration.Round(time.Millisecond))))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s %s\n",
		failedStyle.Render(string(SymbolFailed)), path,
		failedStyle.Render(fmt.Sprintf("%s, %s", r.Kind, plural(lint.CountBlocking(r.Findings()), "error"))))
	if diagnostics := strings.TrimRight(r.Diagnostics, "\n"); diagnostics != "" {
		b.WriteString(diagnostics)
		b.WriteString("\n")
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
