package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m.quit()
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		return m.quit()

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}

	case RunStartedMsg:
		m.RunID = msg.RunID
		m.Validator = msg.Validator
		m.Oracle = msg.Oracle
		if msg.MaxIterations > 0 {
			m.MaxIterations = msg.MaxIterations
		}

	case IterationMsg:
		it := m.iteration(msg.Iteration)
		it.Phase = "validating"
		it.PhaseIcon = IconValidate

	case LintMsg:
		it := m.iteration(msg.Iteration)
		it.Lint = msg.Kind
		it.Errors = msg.Errors
		it.LintTook = msg.Duration
		it.Phase = ""
		it.PhaseIcon = ""

	case OracleInvokedMsg:
		it := m.iteration(msg.Iteration)
		it.Phase = "requesting correction from " + msg.Oracle
		it.PhaseIcon = IconOracle

	case OracleDoneMsg:
		it := m.iteration(msg.Iteration)
		it.Oracle = msg.Status
		it.Attempts = msg.Attempts
		it.OracleTook = msg.Duration
		it.Phase = ""
		it.PhaseIcon = ""

	case OutcomeMsg:
		m.Outcome = msg.Outcome
	}

	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	if m.onQuit != nil && m.Outcome == "" {
		m.onQuit()
	}
	return m, tea.Quit
}
