package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reloader fires an unconditional full session reset on a fixed interval,
// independent of every other timer and of whatever the session is doing.
// It owns its own cancellation (the ctx passed to Run) and has no ordering
// coupling with the auto-refresh cycle.
type Reloader struct {
	clock    clockwork.Clock
	interval time.Duration
	reload   func(ctx context.Context)
	logger   *slog.Logger
}

// NewReloader creates a Reloader calling reload every interval.
func NewReloader(clock clockwork.Clock, interval time.Duration, reload func(ctx context.Context), logger *slog.Logger) *Reloader {
	return &Reloader{
		clock:    clock,
		interval: interval,
		reload:   reload,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled. Each tick triggers the hard reset
// regardless of in-flight search, forecast, or error state.
func (r *Reloader) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.logger.Info("scheduled reload firing")
			r.reload(ctx)
		}
	}
}
