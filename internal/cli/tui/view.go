package tui

import (
	"fmt"
	"strings"
	"time"
)

// logPaneLines is how many recent log lines the view shows
const logPaneLines = 8

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderIterations())

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if len(m.LogLines) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and subject
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))

	header := fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("specfix"),
		m.Styles.Timer.Render(timer),
		m.Styles.Subject.Render(m.Subject),
	)
	if m.Oracle != "" {
		header += "  " + m.Styles.Muted.Render(fmt.Sprintf("%s → %s", m.Validator, m.Oracle))
	}
	return header
}

func (m *Model) renderIterations() string {
	if len(m.Iterations) == 0 {
		return "  Waiting for first validation\n\n"
	}

	var b strings.Builder
	for _, it := range m.Iterations {
		b.WriteString(m.renderIteration(it))
	}
	b.WriteString("\n")
	return b.String()
}

// renderIteration renders one round:
//
//	✗ #1 lint failed, 3 errors (1.2s)  corrected after 1 attempt (14s)
//	    🤖 requesting correction from openai
func (m *Model) renderIteration(it *IterationState) string {
	var b strings.Builder

	var icon, lint string
	switch it.Lint {
	case "":
		icon = m.Styles.Active.Render(IconActive)
		lint = m.Styles.Muted.Render("validating")
	case "passed":
		icon = m.Styles.Passed.Render(IconComplete)
		lint = m.Styles.Passed.Render("lint passed")
	default:
		icon = m.Styles.Failed.Render(IconFailed)
		lint = m.Styles.Failed.Render(fmt.Sprintf("lint %s, %s", it.Lint, plural(it.Errors, "error")))
	}
	if it.LintTook > 0 {
		lint += m.Styles.Muted.Render(fmt.Sprintf(" (%s)", it.LintTook.Round(time.Millisecond)))
	}

	fmt.Fprintf(&b, "  %s %s %s", icon, m.Styles.Number.Render(fmt.Sprintf("#%d", it.Number)), lint)

	if it.Oracle != "" {
		style := m.Styles.Muted
		if it.Oracle != "corrected" {
			style = m.Styles.Degrade
		}
		oracle := fmt.Sprintf("%s after %s", it.Oracle, plural(it.Attempts, "attempt"))
		if it.OracleTook > 0 {
			oracle += fmt.Sprintf(" (%s)", it.OracleTook.Round(time.Second))
		}
		fmt.Fprintf(&b, "  %s", style.Render(oracle))
	}
	b.WriteString("\n")

	if it.Phase != "" {
		fmt.Fprintf(&b, "      %s %s\n",
			m.Styles.PhaseIcon.Render(it.PhaseIcon),
			m.Styles.PhaseText.Render(it.Phase))
	}

	return b.String()
}

// renderProgressBar creates a budget bar of the given width
func (m *Model) renderProgressBar(used, total, width int) string {
	if total == 0 {
		total = 1
	}

	filled := min((used*width)/total, width)

	return "[" +
		m.Styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		m.Styles.ProgressEmpty.Render(strings.Repeat("░", width-filled)) +
		"]"
}

// renderStatusLine renders the iteration budget and outcome
func (m *Model) renderStatusLine() string {
	used := len(m.Iterations)
	line := fmt.Sprintf("  Iterations: %s %d/%d",
		m.renderProgressBar(used, m.MaxIterations, 20), used, m.MaxIterations)

	switch m.Outcome {
	case "":
	case "passed":
		line += "  " + m.Styles.Passed.Render(m.Outcome)
	default:
		line += "  " + m.Styles.Failed.Render(m.Outcome)
	}
	return line
}

func (m *Model) renderLogs() string {
	var b strings.Builder
	b.WriteString(m.Styles.LogTitle.Render("  Logs"))
	b.WriteString("\n")

	lines := m.LogLines
	if len(lines) > logPaneLines {
		lines = lines[len(lines)-logPaneLines:]
	}
	for _, line := range lines {
		if m.Width > 4 && len(line) > m.Width-4 {
			line = line[:m.Width-4]
		}
		b.WriteString("  ")
		b.WriteString(m.Styles.LogLine.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to cancel", key))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
