package app

import (
	"context"
	"log/slog"
	"time"

	"authd/cmd/internal/auth/session"
)

// Janitor periodically removes expired refresh-token records. Expired
// records are already rejected at read time, so the sweep only reclaims
// storage and its cadence is not correctness-critical.
type Janitor struct {
	log      *slog.Logger
	sessions *session.Service
	interval time.Duration
	metrics  *Metrics
}

// NewJanitor constructs a Janitor sweeping at the given interval.
func NewJanitor(log *slog.Logger, sessions *session.Service, interval time.Duration, metrics *Metrics) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Janitor{log: log, sessions: sessions, interval: interval, metrics: metrics}
}

// Run blocks, sweeping on a ticker until the context is canceled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.sessions.CleanupExpired(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error("janitor.sweep.fail", "err", err)
		return
	}
	if j.metrics != nil {
		j.metrics.CleanupSwept(n)
	}
	if n > 0 {
		j.log.Info("janitor.sweep.ok", "removed", n)
	}
}
