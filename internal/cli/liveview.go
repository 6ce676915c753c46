package cli

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/specfix/internal/cli/tui"
)

// liveView runs the bubbletea program for the duration of a repair
type liveView struct {
	program *tea.Program
	bridge  *tui.Bridge
	logs    *tui.LogWriter
	done    chan struct{}
	stop    sync.Once
}

// startLiveView starts the TUI in the background. onQuit runs when the user
// quits before the run finishes.
func startLiveView(stdout, stderr io.Writer, subject string, maxIterations int, onQuit func()) *liveView {
	model := tui.NewModel(subject, maxIterations, onQuit)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(stdout))

	v := &liveView{
		program: program,
		bridge:  tui.NewBridge(program),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(v.done)
		if _, err := program.Run(); err != nil {
			fmt.Fprintf(stderr, "TUI error: %v\n", err)
		}
	}()
	v.logs = tui.NewLogWriter(program)
	return v
}

// Stop flushes logs, asks the program to exit and waits for the terminal
// to be restored. Safe to call more than once.
func (v *liveView) Stop() {
	v.stop.Do(func() {
		_ = v.logs.Close()
		v.bridge.SendDone()
		<-v.done
	})
}
