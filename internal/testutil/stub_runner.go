package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/RevCBH/specfix/internal/lint"
)

// StubRunner is a lint.Runner that replays queued responses.
// Each call records the staged document content so tests can assert
// exactly which candidate was linted.
type StubRunner struct {
	mu        sync.Mutex
	responses []stubResponse
	fallback  *stubResponse
	respond   func(document string) (lint.Output, error)
	calls     []StubCall
}

type stubResponse struct {
	out lint.Output
	err error
}

// StubCall records one Run invocation
type StubCall struct {
	Name       string
	Args       []string
	StagedPath string
	Document   string
}

func NewStubRunner() *StubRunner {
	return &StubRunner{}
}

// Stub queues a response consumed by the next unanswered call
func (s *StubRunner) Stub(out lint.Output, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, stubResponse{out: out, err: err})
}

// StubExit queues a response with the given exit code and stdout
func (s *StubRunner) StubExit(code int, stdout string) {
	s.Stub(lint.Output{ExitCode: code, Stdout: stdout}, nil)
}

// StubDefault sets the response used once the queue is empty
func (s *StubRunner) StubDefault(out lint.Output, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &stubResponse{out: out, err: err}
}

// RespondWith derives the response from the staged document content.
// It takes precedence over queued responses.
func (s *StubRunner) RespondWith(fn func(document string) (lint.Output, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = fn
}

func (s *StubRunner) Run(ctx context.Context, name string, args ...string) (lint.Output, error) {
	call := StubCall{Name: name, Args: append([]string(nil), args...)}
	if len(args) >= 2 && args[0] == "lint" {
		call.StagedPath = args[1]
		if data, err := os.ReadFile(args[1]); err == nil {
			call.Document = string(data)
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	respond := s.respond
	if respond != nil {
		s.mu.Unlock()
		return respond(call.Document)
	}
	if len(s.responses) == 0 {
		fallback := s.fallback
		s.mu.Unlock()
		if fallback != nil {
			return fallback.out, fallback.err
		}
		return lint.Output{}, fmt.Errorf("unexpected lint call: %s %v", name, args)
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	s.mu.Unlock()
	return resp.out, resp.err
}

// Calls returns a copy of the recorded calls
func (s *StubRunner) Calls() []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StubCall(nil), s.calls...)
}

// CallCount returns how many times Run was invoked
func (s *StubRunner) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
