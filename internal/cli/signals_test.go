package cli

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startQuiet runs the listener without touching process signal state
func startQuiet(h *SignalHandler) {
	go h.listen()
}

func TestSignalHandler_New(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := NewSignalHandler(ctx, cancel)

	require.NotNil(t, handler)
	assert.NotNil(t, handler.cancel)
	assert.NotNil(t, handler.force)
	assert.NotNil(t, handler.log)
	assert.False(t, handler.Interrupted())
}

func TestSignalHandler_CancelsOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := NewSignalHandler(ctx, cancel)
	var forced atomic.Bool
	handler.force = func() { forced.Store(true) }

	startQuiet(handler)
	defer handler.Stop()

	handler.signals <- syscall.SIGINT

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.True(t, handler.Interrupted())
	assert.False(t, forced.Load())
}

func TestSignalHandler_SecondSignalForces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := NewSignalHandler(ctx, cancel)
	forced := make(chan struct{})
	handler.force = func() { close(forced) }

	startQuiet(handler)
	defer handler.Stop()

	handler.signals <- syscall.SIGINT
	handler.signals <- syscall.SIGTERM

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("second signal did not force exit")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestSignalHandler_StopWithoutSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var called atomic.Bool
	handler := NewSignalHandler(ctx, func() { called.Store(true) })
	startQuiet(handler)

	handler.Stop()
	handler.Stop()

	select {
	case <-handler.done:
	case <-time.After(time.Second):
		t.Fatal("listener did not exit after Stop")
	}
	assert.False(t, called.Load())
	assert.False(t, handler.Interrupted())
}
