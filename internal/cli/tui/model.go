package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// IterationState tracks one validate/correct round in the TUI
type IterationState struct {
	Number int

	// Lint is "" while the linter runs, then the result kind
	Lint     string
	Errors   int
	LintTook time.Duration

	// Oracle is "" when no correction was requested
	Oracle     string
	Attempts   int
	OracleTook time.Duration

	Phase     string
	PhaseIcon string
}

// Model is the bubbletea model for the TUI
type Model struct {
	// Configuration
	Subject string
	Styles  Styles

	// Run details, filled from the started event
	RunID         string
	MaxIterations int
	Validator     string
	Oracle        string

	// State
	Iterations []*IterationState
	Outcome    string
	StartTime  time.Time
	LogLines   []string
	LogLimit   int
	Width      int
	Height     int

	// Control
	Quitting bool
	Done     bool

	// onQuit runs when the user quits before the run finishes
	onQuit func()
}

// NewModel creates a new TUI model. onQuit may be nil.
func NewModel(subject string, maxIterations int, onQuit func()) *Model {
	return &Model{
		Subject:       subject,
		MaxIterations: maxIterations,
		Styles:        DefaultStyles(),
		StartTime:     time.Now(),
		LogLimit:      200,
		onQuit:        onQuit,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Current returns the iteration in progress, or nil before the first one
func (m *Model) Current() *IterationState {
	if len(m.Iterations) == 0 {
		return nil
	}
	return m.Iterations[len(m.Iterations)-1]
}

// iteration returns the state for number n, creating it if needed
func (m *Model) iteration(n int) *IterationState {
	for _, it := range m.Iterations {
		if it.Number == n {
			return it
		}
	}
	it := &IterationState{Number: n}
	m.Iterations = append(m.Iterations, it)
	return it
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// RunStartedMsg indicates a repair run has started
type RunStartedMsg struct {
	RunID         string
	MaxIterations int
	Validator     string
	Oracle        string
}

// IterationMsg indicates a new validation round
type IterationMsg struct {
	Iteration int
}

// LintMsg reports a linter result
type LintMsg struct {
	Iteration int
	Kind      string
	Errors    int
	Duration  time.Duration
}

// OracleInvokedMsg indicates a correction was requested
type OracleInvokedMsg struct {
	Iteration int
	Oracle    string
}

// OracleDoneMsg reports a correction result
type OracleDoneMsg struct {
	Iteration int
	Status    string
	Attempts  int
	Duration  time.Duration
}

// OutcomeMsg reports the final state of the run
type OutcomeMsg struct {
	Outcome  string
	Attempts int
}
