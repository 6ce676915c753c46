package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/repair"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	program Sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(program Sender) *Bridge {
	return &Bridge{program: program}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		if msg := EventToMsg(evt); msg != nil {
			b.program.Send(msg)
		}
	}
}

// EventToMsg converts a repair event to a tea.Msg, or nil for events the
// view does not render
func EventToMsg(evt events.Event) tea.Msg {
	iteration := 0
	if evt.Iteration != nil {
		iteration = *evt.Iteration
	}

	switch evt.Type {
	case repair.RepairStarted:
		msg := RunStartedMsg{RunID: evt.Run}
		if p, ok := evt.Payload.(repair.StartedPayload); ok {
			msg.MaxIterations = p.MaxIterations
			msg.Validator = p.Validator
			msg.Oracle = p.Oracle
		}
		return msg

	case repair.RepairIteration:
		return IterationMsg{Iteration: iteration}

	case repair.LintPassed, repair.LintFailed:
		msg := LintMsg{Iteration: iteration}
		if p, ok := evt.Payload.(repair.LintPayload); ok {
			msg.Kind = p.Kind
			msg.Errors = p.Errors
			msg.Duration = p.Duration
		}
		return msg

	case repair.OracleInvoked:
		msg := OracleInvokedMsg{Iteration: iteration}
		if p, ok := evt.Payload.(repair.OraclePayload); ok {
			msg.Oracle = p.Oracle
		}
		return msg

	case repair.OracleCorrected, repair.OracleUnchanged, repair.OracleFailed:
		msg := OracleDoneMsg{Iteration: iteration}
		if p, ok := evt.Payload.(repair.OraclePayload); ok {
			msg.Status = p.Status
			msg.Attempts = p.Attempts
			msg.Duration = p.Duration
		}
		return msg

	case repair.RepairPassed, repair.RepairExhausted, repair.RepairCancelled:
		msg := OutcomeMsg{}
		if p, ok := evt.Payload.(repair.OutcomePayload); ok {
			msg.Outcome = string(p.Outcome)
			msg.Attempts = p.Attempts
		}
		return msg

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
