package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, logging.Discard())

	var order []string
	m.Register("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Register("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	if err := m.Shutdown(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("Expected [second first], got %v", order)
	}

	// hooks run once
	order = nil
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("Expected no hooks on second shutdown, got %v", order)
	}
}

func TestShutdownContinuesAfterFailure(t *testing.T) {
	m := New(time.Second, logging.Discard())
	boom := errors.New("boom")

	ran := false
	m.Register("survivor", func(ctx context.Context) error {
		ran = true
		return nil
	})
	m.Register("broken", func(ctx context.Context) error {
		return boom
	})

	err := m.Shutdown()
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped boom, got %v", err)
	}
	if !ran {
		t.Error("Expected remaining hook to run")
	}
}

func TestWaitReturnsOnContext(t *testing.T) {
	m := New(time.Second, logging.Discard())

	stopped := false
	m.Register("server", StopHTTPServer(stubServer{stopped: &stopped}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if !stopped {
		t.Error("Expected server hook to run")
	}
}

type stubServer struct {
	stopped *bool
}

func (s stubServer) Shutdown(ctx context.Context) error {
	*s.stopped = true
	return nil
}
