package ingest

import (
	"context"
	"time"

	"deripulse/internal/logger"
)

// Poller drives the collector on a fixed interval. It is the in-process
// replacement for an external beat scheduler: a first cycle runs
// immediately, then one cycle per tick until the context is cancelled.
type Poller struct {
	collector *Collector
	interval  time.Duration
}

func NewPoller(collector *Collector, interval time.Duration) *Poller {
	return &Poller{collector: collector, interval: interval}
}

// Run blocks until ctx is cancelled and returns ctx.Err(). Cycle errors are
// already logged by the collector; the loop keeps going regardless, the next
// tick is the retry.
func (p *Poller) Run(ctx context.Context) error {
	log := logger.With("poller")
	log.Info().Dur("interval", p.interval).Msg("poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.collector.CollectAll(ctx); err != nil {
		log.Warn().Err(err).Msg("cycle completed with errors")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.collector.CollectAll(ctx); err != nil {
				log.Warn().Err(err).Msg("cycle completed with errors")
			}
		}
	}
}
