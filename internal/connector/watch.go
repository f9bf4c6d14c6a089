package connector

import (
	"context"
	"errors"
	"time"

	"github.com/landigf/MinervaS/internal/domain"
)

// WatchConfig configures live monitoring.
type WatchConfig struct {
	// WithinKm restricts monitored events to a radius around the vehicle;
	// 0 disables the distance filter.
	WithinKm float64

	// PollInterval is the sleep between refresh cycles; 0 → 60s.
	PollInterval time.Duration

	// OnEvent is invoked on the poll goroutine for every important event
	// first observed after the watch started. It must not block
	// indefinitely: the next poll waits for it.
	OnEvent func(domain.Event)
}

const defaultPollInterval = 60 * time.Second

// Watch runs the live monitoring loop until the context is cancelled: each
// tick forces a refresh, re-filters the cached events, and invokes the
// callback for every event newer than the watch start whose severity or
// category marks it important. Callbacks run outside the cache lock.
//
// Watch blocks; run it on its own goroutine. It returns nil when the
// context ends.
func (c *Connector) Watch(ctx context.Context, cfg WatchConfig) error {
	if cfg.OnEvent == nil {
		return errors.New("connector: watch callback is required")
	}
	poll := cfg.PollInterval
	if poll == 0 {
		poll = defaultPollInterval
	}

	start := c.clock.Now()
	c.logger.Info("live watch started", "poll_interval", poll, "within_km", cfg.WithinKm)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("live watch stopping", "reason", ctx.Err())
			return nil
		case <-c.clock.After(poll):
		}

		if err := c.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("watch refresh failed", "error", err)
			continue
		}

		events, err := c.Events(ctx, Filter{WithinKm: cfg.WithinKm})
		if err != nil {
			c.logger.Error("watch filter failed", "error", err)
			continue
		}

		for _, e := range events {
			if e.Timestamp.After(start) && e.Important() {
				c.metrics.WatchNotifications.Inc()
				cfg.OnEvent(e)
			}
		}
	}
}
