// Package scheduler runs the periodic background jobs of the quote service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/metrics"
)

const refreshTimeout = 10 * time.Second

// Refresher re-reads the stored pricing configuration. It reports whether a
// newer version was published.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Scheduler keeps every instance on the latest pricing configuration when
// several of them share one database.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	schedule  string
}

// New creates a scheduler running refresher on schedule, a standard cron
// spec or a descriptor such as "@every 30s".
func New(refresher Refresher, schedule string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		schedule:  schedule,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RefreshPricing); err != nil {
		return fmt.Errorf("schedule pricing refresh %q: %w", s.schedule, err)
	}

	log := logger.Logger()
	log.Info().Str("schedule", s.schedule).Msg("Starting scheduler")
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish or ctx to
// be done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RefreshPricing runs one refresh and records its outcome.
func (s *Scheduler) RefreshPricing() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	log := logger.WithContext(map[string]interface{}{"job": "pricing_refresh"})
	updated, err := s.refresher.Refresh(ctx)
	switch {
	case err != nil:
		metrics.RecordSnapshotRefresh("error")
		log.Warn().Err(err).Msg("Pricing configuration refresh failed")
	case updated:
		metrics.RecordSnapshotRefresh("updated")
	default:
		metrics.RecordSnapshotRefresh("unchanged")
	}
}
