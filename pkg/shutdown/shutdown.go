// Package shutdown runs registered cleanup hooks when the process is asked
// to stop.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
)

// Hook is a cleanup step run during shutdown
type Hook func(context.Context) error

// Manager handles graceful shutdown
type Manager struct {
	mu      sync.Mutex
	hooks   []namedHook
	timeout time.Duration
	logger  *logging.Logger
	signals []os.Signal
}

type namedHook struct {
	name string
	fn   Hook
}

// New creates a shutdown manager whose hooks share one timeout
func New(timeout time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
		signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT},
	}
}

// Register adds a shutdown hook. Hooks run in reverse order (LIFO).
func (m *Manager) Register(name string, fn Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, fn: fn})
}

// Wait blocks until a termination signal arrives or ctx is done, then runs
// the hooks. It returns ctx.Err() when ctx ended the wait.
func (m *Manager) Wait(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		m.logger.Info("Received signal, shutting down", logging.Fields{"signal": sig.String()})
		return m.Shutdown()
	case <-ctx.Done():
		if err := m.Shutdown(); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Shutdown runs every hook under the manager timeout and returns the first
// error. Later hooks still run after a failure.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var firstErr error
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("Shutdown hook failed", logging.Fields{"hook": h.name, "error": err.Error()})
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", h.name, err)
			}
			continue
		}
		m.logger.Debug("Shutdown hook done", logging.Fields{"hook": h.name})
	}
	m.hooks = nil
	return firstErr
}

// StopHTTPServer creates a hook that gracefully stops an http.Server
func StopHTTPServer(server interface{ Shutdown(context.Context) error }) Hook {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop HTTP server: %w", err)
		}
		return nil
	}
}
