package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"SecurityNewsScanner/internal/ports"
)

// RunFunc executes one complete crawl.
type RunFunc func(ctx context.Context) error

// Scheduler triggers crawls from a cron-like driver.
type Scheduler struct {
	driver ports.Scheduler
	run    RunFunc
	logger *slog.Logger
	runs   atomic.Int64
}

// NewScheduler binds run to driver. Either may be nil, in which case Start does nothing.
func NewScheduler(driver ports.Scheduler, run RunFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, run: run, logger: loggerOrDiscard(logger)}
}

// Runs reports how many crawls have been triggered.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// Start registers the crawl with the driver. A failed crawl is logged and
// the next trigger runs normally. ctx bounds every triggered crawl.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.run == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		n := s.runs.Add(1)
		log := s.logger.With("run", n)
		log.Info("scheduled crawl triggered", "at", trigger.Format(time.RFC3339))

		started := time.Now()
		if err := s.run(ctx); err != nil {
			log.Error("scheduled crawl failed", "error", err, "took", time.Since(started).Round(time.Millisecond))
			return
		}
		log.Info("scheduled crawl finished", "took", time.Since(started).Round(time.Millisecond))
	})
}

// Stop tears down the driver, waiting for a running crawl until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
