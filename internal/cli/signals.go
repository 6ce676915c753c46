package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/chainguard-dev/clog"
)

// SignalHandler cancels the run context on the first SIGINT or SIGTERM.
// A second signal while the loop is still unwinding calls force, which
// exits the process with ExitCancelled.
type SignalHandler struct {
	signals  chan os.Signal
	cancel   context.CancelFunc
	force    func()
	log      *clog.Logger
	count    atomic.Int32
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSignalHandler creates a signal handler that calls cancel on interrupt.
// The logger is taken from ctx.
func NewSignalHandler(ctx context.Context, cancel context.CancelFunc) *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 2),
		cancel:  cancel,
		force:   func() { os.Exit(ExitCancelled) },
		log:     clog.FromContext(ctx),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start registers for SIGINT and SIGTERM and begins listening.
func (h *SignalHandler) Start() {
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
}

func (h *SignalHandler) listen() {
	defer close(h.done)
	for {
		select {
		case sig := <-h.signals:
			if h.count.Add(1) == 1 {
				h.log.Warnf("Received %v, cancelling repair (repeat to force exit)", sig)
				h.cancel()
				continue
			}
			h.log.Errorf("Received %v again, exiting", sig)
			h.force()
			return
		case <-h.quit:
			return
		}
	}
}

// Interrupted reports whether a signal was received
func (h *SignalHandler) Interrupted() bool {
	return h.count.Load() > 0
}

// Stop deregisters the handler and waits for the listener to exit.
// Safe to call more than once.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}
