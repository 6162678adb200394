package engine

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/ralphlabs/conductor/internal/agent"
)

// InterruptHandler installs a single idempotent signal handler: the first
// SIGINT or SIGTERM cancels ctx (unblocking the engine loop's current
// supervision wait) and flips Stopped so the loop does not start another
// task; a second SIGINT escalates to a hard kill of workerPID's process
// group, for the case where graceful shutdown itself hangs.
type InterruptHandler struct {
	stopped atomic.Bool
	signals chan os.Signal
	cancel  context.CancelFunc

	workerPID atomic.Int64
}

// NewInterruptHandler derives a cancellable context from parent and starts
// listening for SIGINT/SIGTERM. Call Stop to release the OS signal
// registration once the engine loop has exited.
func NewInterruptHandler(parent context.Context) (*InterruptHandler, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	h := &InterruptHandler{
		signals: make(chan os.Signal, 2),
		cancel:  cancel,
	}
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)
	go h.run()
	return h, ctx
}

func (h *InterruptHandler) run() {
	first := true
	for range h.signals {
		if first {
			first = false
			h.stopped.Store(true)
			h.cancel()
			continue
		}
		if pid := h.workerPID.Load(); pid != 0 {
			_ = agent.KillGroup(int(pid))
		}
	}
}

// Stopped reports whether an interrupt has been observed. Pass as the
// Engine's stopRequested callback.
func (h *InterruptHandler) Stopped() bool { return h.stopped.Load() }

// SetActiveWorkerPID records the currently running worker's PID so a second
// interrupt can escalate directly, bypassing a hung graceful shutdown. Pass
// 0 to clear it once the worker has exited.
func (h *InterruptHandler) SetActiveWorkerPID(pid int) {
	h.workerPID.Store(int64(pid))
}

// Stop releases the OS signal registration.
func (h *InterruptHandler) Stop() {
	signal.Stop(h.signals)
	close(h.signals)
}
