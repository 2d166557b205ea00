// Package shutdown provides graceful shutdown handling.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler coordinates graceful shutdown: it waits for SIGINT/SIGTERM
// (or an explicit Trigger) and then runs registered hooks in reverse
// registration order under a shared timeout.
type Handler struct {
	timeout time.Duration

	mu    sync.Mutex
	hooks []func(context.Context) error

	triggerOnce sync.Once
	triggerCh   chan struct{}
}

// NewHandler creates a shutdown handler with the given hook timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout:   timeout,
		triggerCh: make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse registration
// order, so registering in startup order tears down in reverse.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts shutdown without a signal. Safe to call more than
// once; only the first call has any effect.
func (h *Handler) Trigger() {
	h.triggerOnce.Do(func() {
		close(h.triggerCh)
	})
}

// Wait blocks until a shutdown signal (or Trigger), then runs all
// hooks. It returns the combined error of every failed hook.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-h.triggerCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
