// Package session coordinates credential refreshes: at most one refresh is
// in flight at any time, and every caller that hits an auth failure while
// one is running waits for that refresh's outcome instead of starting its
// own.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoRefreshCredential is returned when a refresh is requested but no
// refresh credential is stored. It is an immediate, terminal refresh
// failure.
var ErrNoRefreshCredential = errors.New("no refresh credential available")

// RefreshFunc exchanges the stored refresh credential for a new access
// credential and persists it. It runs on the leader's goroutine.
type RefreshFunc func(ctx context.Context) error

// Coordinator serializes refreshes. The first caller to arrive while idle
// becomes the leader and drives the refresh; later callers enqueue and are
// woken in arrival order with the shared outcome. The refreshing state is
// reset on every exit path.
type Coordinator struct {
	refresh RefreshFunc
	logger  zerolog.Logger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

func NewCoordinator(refresh RefreshFunc, logger zerolog.Logger) *Coordinator {
	return &Coordinator{refresh: refresh, logger: logger}
}

// Do runs one refresh or joins the in-flight one. It returns nil once a
// refresh has succeeded, the refresh error otherwise. Waiting callers may
// abandon the wait via ctx; the queue record is still settled exactly once.
func (c *Coordinator) Do(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	c.logger.Info().Msg("Session expired, refreshing credentials...")

	err := c.runRefresh(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Credential refresh failed")
	} else {
		c.logger.Info().Msg("Credentials refreshed successfully")
	}

	c.settle(err)
	return err
}

// runRefresh shields the coordinator state from a panicking RefreshFunc;
// the panic becomes an ordinary refresh failure for leader and waiters.
func (c *Coordinator) runRefresh(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()
	return c.refresh(ctx)
}

// settle drains the queue in FIFO order and returns to idle in one critical
// section, so a late arrival either joins this outcome or starts fresh.
func (c *Coordinator) settle(err error) {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
}
