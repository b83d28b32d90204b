package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SecurityNewsScanner/internal/ports"
)

// ErrAlreadyStarted is returned when Start is called twice without Stop.
var ErrAlreadyStarted = errors.New("scheduler already started")

// CronScheduler triggers a job on a standard five-field cron expression.
// A trigger that fires while the previous run is still going is skipped.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
	// stopped is done once every job of the last stopped cron has returned.
	stopped context.Context
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// Parser accepts minute, hour, day of month, month and day of week.
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewCronScheduler validates spec and binds it to loc (UTC when nil).
func NewCronScheduler(spec string, loc *time.Location, logger *slog.Logger) (*CronScheduler, error) {
	if _, err := Parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CronScheduler{spec: spec, location: loc, logger: logger}, nil
}

// Next reports the first trigger strictly after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	schedule, _ := Parser.Parse(c.spec)
	return schedule.Next(t.In(c.location))
}

// Start registers job and begins ticking until Stop is called.
func (c *CronScheduler) Start(_ context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return ErrAlreadyStarted
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(c.logger.Handler(), slog.LevelWarn))
	cr := cron.New(
		cron.WithParser(Parser),
		cron.WithLocation(c.location),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := cr.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	cr.Start()
	c.cron = cr
	c.stopped = nil
	c.logger.Info("scheduler started", "cron", c.spec, "timezone", c.location.String(), "next", c.Next(time.Now()))

	return nil
}

// Stop halts new triggers and waits for a running job until ctx expires.
// Every caller waits on the same job, so a repeated Stop does not return early.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.cron != nil {
		c.stopped = c.cron.Stop()
		c.cron = nil
	}
	stopped := c.stopped
	c.mu.Unlock()

	if stopped == nil {
		return nil
	}

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
