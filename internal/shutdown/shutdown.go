package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glefebvre/mediadesk/internal/logger"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler stops the view server and releases the preference store on
// SIGINT/SIGTERM.
type Handler struct {
	mu             sync.Mutex
	hooks          []hook
	timeout        time.Duration
	logger         *logger.Logger
	signalChan     chan os.Signal
	isShuttingDown bool
}

// New creates a new shutdown handler
func New(timeout time.Duration, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Handler{
		hooks:      make([]hook, 0),
		timeout:    timeout,
		logger:     log,
		signalChan: make(chan os.Signal, 1),
	}
}

// Register adds a named hook. Hooks run one after the other in reverse
// order of registration, so resources opened first are released last.
func (h *Handler) Register(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Wait blocks until a shutdown signal is received or ctx is done, then
// runs the hooks.
func (h *Handler) Wait(ctx context.Context) error {
	signal.Notify(h.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(h.signalChan)

	select {
	case sig := <-h.signalChan:
		h.logger.WithFields(map[string]interface{}{"signal": sig.String()}).Info("shutdown requested")
	case <-ctx.Done():
		h.logger.Info("shutdown requested: context done")
	}
	return h.Shutdown()
}

// Shutdown runs every hook within the timeout. It returns the hook errors
// joined, or context.DeadlineExceeded when the timeout elapses first.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.isShuttingDown {
		h.mu.Unlock()
		return nil
	}
	h.isShuttingDown = true
	hooks := make([]hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hk := hooks[i]
			if err := hk.fn(ctx); err != nil {
				h.logger.WithFields(map[string]interface{}{"hook": hk.name}).Error("shutdown hook failed", err)
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
				continue
			}
			h.logger.WithFields(map[string]interface{}{"hook": hk.name}).Debug("shutdown hook done")
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		h.logger.Warn("shutdown timed out")
		return ctx.Err()
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (h *Handler) IsShuttingDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isShuttingDown
}

// TriggerShutdown programmatically triggers a shutdown
func (h *Handler) TriggerShutdown() {
	select {
	case h.signalChan <- syscall.SIGTERM:
	default:
	}
}
