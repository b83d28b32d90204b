package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsCrawlOnTrigger(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	runs := 0
	s := NewScheduler(driver, func(context.Context) error {
		runs++
		if runs == 1 {
			return errors.New("listing unavailable")
		}
		return nil
	}, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())
	assert.Equal(t, 2, runs, "a failed run does not stop later triggers")
	assert.Equal(t, int64(2), s.Runs())

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
