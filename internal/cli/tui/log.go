package tui

import (
	"bytes"
	"strings"
	"sync"
)

// maxLogLine truncates very long log lines (raw model output at debug level)
const maxLogLine = 2000

// LogMsg is emitted when a log line should be appended to the TUI.
type LogMsg struct {
	Line string
}

// LogWriter streams log output into the TUI so it does not tear the
// alternate screen.
type LogWriter struct {
	program Sender

	mu     sync.Mutex
	buffer bytes.Buffer
	closed bool
	lines  chan string
	done   chan struct{}
}

// NewLogWriter creates a LogWriter that sends log lines into the program.
func NewLogWriter(program Sender) *LogWriter {
	w := &LogWriter{
		program: program,
		lines:   make(chan string, 200),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for line := range w.lines {
			w.program.Send(LogMsg{Line: line})
		}
	}()
	return w
}

// Write implements io.Writer, splitting log output into lines.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = w.buffer.Write(p)

	for {
		data := w.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}

		line := string(data[:idx])
		w.buffer.Next(idx + 1)
		w.sendLine(line)
	}

	return len(p), nil
}

// Close flushes any partial line and stops forwarding.
// Lines written after Close are dropped.
func (w *LogWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	if w.buffer.Len() > 0 {
		w.sendLine(w.buffer.String())
		w.buffer.Reset()
	}
	w.closed = true
	close(w.lines)
	w.mu.Unlock()

	<-w.done
	return nil
}

// sendLine must be called with mu held
func (w *LogWriter) sendLine(line string) {
	if w.closed {
		return
	}
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	if len(line) > maxLogLine {
		line = line[:maxLogLine] + "..."
	}
	select {
	case w.lines <- line:
	default:
	}
}
