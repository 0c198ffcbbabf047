package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
	"github.com/ericfisherdev/ytsentiment/internal/metrics"
)

// SessionJanitor ends sessions that have been idle longer than the TTL.
type SessionJanitor struct {
	store    driven.SessionStore
	clock    clockwork.Clock
	ttl      time.Duration
	interval time.Duration
}

// NewSessionJanitor creates a janitor that sweeps every ttl/4, clamped to [1m, 15m].
func NewSessionJanitor(store driven.SessionStore, clock clockwork.Clock, ttl time.Duration) *SessionJanitor {
	interval := min(max(ttl/4, time.Minute), 15*time.Minute)
	return &SessionJanitor{
		store:    store,
		clock:    clock,
		ttl:      ttl,
		interval: interval,
	}
}

// Interval returns the sweep period.
func (j *SessionJanitor) Interval() time.Duration {
	return j.interval
}

// Start sweeps on every tick until ctx is canceled.
func (j *SessionJanitor) Start(ctx context.Context) {
	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.Chan():
			if _, err := j.Sweep(ctx); err != nil {
				slog.Error("session sweep failed", "error", err)
			}
		}
	}
}

// Sweep removes every session idle for longer than the TTL.
func (j *SessionJanitor) Sweep(ctx context.Context) (int, error) {
	cutoff := j.clock.Now().Add(-j.ttl)

	n, err := j.store.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeping idle sessions: %w", err)
	}

	if n > 0 {
		metrics.SessionsExpired.Add(float64(n))
		slog.Info("expired idle sessions", "count", n, "ttl", j.ttl)
	}

	if live, err := j.store.Count(ctx); err == nil {
		metrics.SessionsActive.Set(float64(live))
	}
	return n, nil
}
