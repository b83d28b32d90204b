// Package retry provides a bounded retry policy shared by network clients.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned once every attempt allowed by a Policy has failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Backoff computes the pause before the attempt that follows attempt (1-based).
type Backoff func(attempt int) time.Duration

// Constant waits the same interval between every attempt.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Exponential doubles initial after each attempt, capped at max.
func Exponential(initial, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := initial
		for i := 1; i < attempt; i++ {
			d *= 2
			if max > 0 && d >= max {
				return max
			}
		}
		return d
	}
}

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts includes the first try; values below 1 behave as 1.
	MaxAttempts int
	Backoff     Backoff
}

// Do runs fn until it succeeds or the policy is exhausted. fn receives the
// 1-based attempt number. The final error wraps both ErrExhausted and the
// last failure returned by fn.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts || p.Backoff == nil {
			continue
		}
		if err := Sleep(ctx, p.Backoff(attempt)); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
