package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glefebvre/mediadesk/internal/logger"
)

func TestNew(t *testing.T) {
	timeout := 5 * time.Second
	h := New(timeout, logger.Discard())

	if h.timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, h.timeout)
	}
	if h.isShuttingDown {
		t.Error("expected isShuttingDown to be false")
	}
	if len(h.hooks) != 0 {
		t.Errorf("expected 0 hooks, got %d", len(h.hooks))
	}
}

func TestShutdown_ReverseOrder(t *testing.T) {
	h := New(5*time.Second, logger.Discard())

	var order []string
	var mu sync.Mutex
	for _, name := range []string{"store", "client", "view server"} {
		h.Register(name, func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	if err := h.Shutdown(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := []string{"view server", "client", "store"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("expected order %v, got %v", expected, order)
	}
	if !h.IsShuttingDown() {
		t.Error("expected IsShuttingDown to be true")
	}
}

func TestShutdown_JoinsErrorsAndRunsEveryHook(t *testing.T) {
	h := New(5*time.Second, logger.Discard())

	errStore := errors.New("store busy")
	ran := 0
	h.Register("store", func(ctx context.Context) error {
		ran++
		return errStore
	})
	h.Register("view server", func(ctx context.Context) error {
		ran++
		return errors.New("listener closed")
	})

	err := h.Shutdown()
	if !errors.Is(err, errStore) {
		t.Errorf("expected error wrapping %v, got %v", errStore, err)
	}
	if err == nil || !strings.Contains(err.Error(), "view server: listener closed") {
		t.Errorf("expected hook name in error, got %v", err)
	}
	if ran != 2 {
		t.Errorf("expected 2 hooks to run, got %d", ran)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	h := New(50*time.Millisecond, logger.Discard())

	h.Register("slow", func(ctx context.Context) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	err := h.Shutdown()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	h := New(5*time.Second, logger.Discard())

	calls := 0
	h.Register("once", func(ctx context.Context) error {
		calls++
		return nil
	})

	if err := h.Shutdown(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := h.Shutdown(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWait_TriggerShutdown(t *testing.T) {
	h := New(5*time.Second, logger.Discard())

	done := make(chan error)
	go func() {
		done <- h.Wait(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	h.TriggerShutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("expected Wait to return after TriggerShutdown")
	}
}

func TestWait_ContextDone(t *testing.T) {
	h := New(5*time.Second, logger.Discard())
	closed := false
	h.Register("view server", func(ctx context.Context) error {
		closed = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !closed {
		t.Error("expected hooks to run when the context is done")
	}
}
